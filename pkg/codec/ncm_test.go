package codec

import (
	"bytes"
	"crypto/aes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildNCM assembles a syntactically valid NCM container around payload,
// using the same key wrap and keystream the decoder undoes.
func buildNCM(t *testing.T, key, meta, cover, payload []byte) []byte {
	t.Helper()

	plain := append([]byte(ncmKeyPrefix), key...)
	pad := aes.BlockSize - len(plain)%aes.BlockSize
	for i := 0; i < pad; i++ {
		plain = append(plain, byte(pad))
	}
	cipher, err := aes.NewCipher(ncmCoreKey)
	require.NoError(t, err)
	wrapped := make([]byte, len(plain))
	for i := 0; i < len(plain); i += aes.BlockSize {
		cipher.Encrypt(wrapped[i:i+aes.BlockSize], plain[i:i+aes.BlockSize])
	}
	for i := range wrapped {
		wrapped[i] ^= 0x64
	}

	var buf bytes.Buffer
	buf.Write(ncmMagic)
	buf.Write([]byte{0x01, 0x70}) // header gap, content irrelevant
	writeNCMBlock(&buf, wrapped)
	writeNCMBlock(&buf, meta)
	buf.Write(make([]byte, 9)) // crc + gap
	writeNCMBlock(&buf, cover)

	box := ncmKeyBox(key)
	masked := make([]byte, len(payload))
	for i, b := range payload {
		j := byte(i + 1)
		masked[i] = b ^ box[(box[j]+box[(box[j]+j)&0xff])&0xff]
	}
	buf.Write(masked)
	return buf.Bytes()
}

func writeNCMBlock(buf *bytes.Buffer, b []byte) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
}

func TestNCMRoundTrip(t *testing.T) {
	payload := append([]byte("fLaC"), bytes.Repeat([]byte("audio frame data "), 400)...)
	container := buildNCM(t,
		[]byte("18353545011379130226"),
		[]byte(`163 key(Don't modify):{"format":"flac"}`),
		[]byte("not really a jpeg"),
		payload,
	)

	r, err := NewNCMReader(bytes.NewReader(container))
	require.NoError(t, err)
	dec, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, dec)
}

func TestNCMRoundTripEmptySections(t *testing.T) {
	payload := []byte{0x49, 0x44, 0x33, 0x04, 0x00}
	container := buildNCM(t, []byte("42"), nil, nil, payload)

	r, err := NewNCMReader(bytes.NewReader(container))
	require.NoError(t, err)
	dec, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, dec)
}

func TestNCMReaderChunkedReads(t *testing.T) {
	payload := append([]byte("fLaC"), bytes.Repeat([]byte{0xab}, 3000)...)
	container := buildNCM(t, []byte("key"), nil, nil, payload)

	r, err := NewNCMReader(bytes.NewReader(container))
	require.NoError(t, err)

	var dec bytes.Buffer
	buf := make([]byte, 11)
	for {
		n, err := r.Read(buf)
		dec.Write(buf[:n])
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, payload, dec.Bytes())
}

func TestNCMBadMagic(t *testing.T) {
	_, err := NewNCMReader(bytes.NewReader([]byte("MADFNETC and more bytes here")))
	assert.ErrorIs(t, err, ErrBadContainer)
}

func TestNCMTruncatedHeader(t *testing.T) {
	container := buildNCM(t, []byte("key"), []byte("meta"), nil, []byte("fLaC"))
	for _, cut := range []int{4, 10, 20} {
		_, err := NewNCMReader(bytes.NewReader(container[:cut]))
		assert.ErrorIs(t, err, ErrBadContainer, "cut at %d", cut)
	}
}

func TestNCMCorruptKeyBlock(t *testing.T) {
	container := buildNCM(t, []byte("key"), nil, nil, []byte("fLaC"))
	// Flip a byte inside the wrapped key block (starts after magic+gap+len).
	corrupted := append([]byte(nil), container...)
	corrupted[14+3] ^= 0xff
	_, err := NewNCMReader(bytes.NewReader(corrupted))
	assert.ErrorIs(t, err, ErrBadContainer)
}
