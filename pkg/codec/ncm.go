package codec

import (
	"bytes"
	"crypto/aes"
	"encoding/binary"
	"fmt"
	"io"
)

// ncmCoreKey decrypts the per-file payload key embedded in the container
// header.
var ncmCoreKey = []byte("hzHRAmso5kInbaxW")

// ncmKeyPrefix precedes the payload key inside the unwrapped key block.
const ncmKeyPrefix = "neteasecloudmusic"

// NewNCMReader parses an NCM container header from r and returns a reader
// over the decoded audio payload.
//
// Container layout: 8-byte magic, 2-byte gap, length-prefixed key block
// (XOR 0x64, AES-128-ECB wrapped), length-prefixed metadata blob, 4-byte
// CRC, 5-byte gap, length-prefixed cover image, then the keystream-masked
// audio payload. Metadata and cover are skipped; only the key block is
// needed for decoding.
func NewNCMReader(r io.Reader) (io.Reader, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: reading magic: %v", ErrBadContainer, err)
	}
	if !bytes.Equal(magic[:], ncmMagic) {
		return nil, fmt.Errorf("%w: bad magic % x", ErrBadContainer, magic)
	}
	if err := ncmSkip(r, 2); err != nil {
		return nil, fmt.Errorf("%w: header gap: %v", ErrBadContainer, err)
	}

	keyBlock, err := ncmReadBlock(r)
	if err != nil {
		return nil, fmt.Errorf("%w: key block: %v", ErrBadContainer, err)
	}
	for i := range keyBlock {
		keyBlock[i] ^= 0x64
	}
	key, err := ncmUnwrapKey(keyBlock)
	if err != nil {
		return nil, err
	}

	// Metadata blob, CRC + gap, and the embedded cover image all precede
	// the payload and are irrelevant to conversion.
	if err := ncmSkipBlock(r); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", ErrBadContainer, err)
	}
	if err := ncmSkip(r, 9); err != nil {
		return nil, fmt.Errorf("%w: crc gap: %v", ErrBadContainer, err)
	}
	if err := ncmSkipBlock(r); err != nil {
		return nil, fmt.Errorf("%w: cover image: %v", ErrBadContainer, err)
	}

	return &ncmReader{r: r, box: ncmKeyBox(key)}, nil
}

// ncmUnwrapKey AES-ECB-decrypts the key block, strips the PKCS#7 padding
// and the fixed prefix, and returns the keystream key.
func ncmUnwrapKey(block []byte) ([]byte, error) {
	if len(block) == 0 || len(block)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: key block length %d not AES aligned", ErrBadContainer, len(block))
	}
	cipher, err := aes.NewCipher(ncmCoreKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadContainer, err)
	}
	plain := make([]byte, len(block))
	for i := 0; i < len(block); i += aes.BlockSize {
		cipher.Decrypt(plain[i:i+aes.BlockSize], block[i:i+aes.BlockSize])
	}
	pad := int(plain[len(plain)-1])
	if pad < 1 || pad > aes.BlockSize || pad > len(plain) {
		return nil, fmt.Errorf("%w: bad key padding %d", ErrBadContainer, pad)
	}
	plain = plain[:len(plain)-pad]
	if !bytes.HasPrefix(plain, []byte(ncmKeyPrefix)) {
		return nil, fmt.Errorf("%w: key prefix mismatch", ErrBadContainer)
	}
	key := plain[len(ncmKeyPrefix):]
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty payload key", ErrBadContainer)
	}
	return key, nil
}

// ncmKeyBox runs the RC4 key schedule over key; the payload keystream is
// derived from the resulting box by position, not by RC4's PRGA.
func ncmKeyBox(key []byte) [256]byte {
	var box [256]byte
	for i := range box {
		box[i] = byte(i)
	}
	var j byte
	for i := 0; i < 256; i++ {
		j = box[i] + j + key[i%len(key)]
		box[i], box[j] = box[j], box[i]
	}
	return box
}

// ncmReader decodes the audio payload. The keystream byte depends only on
// the absolute payload offset, so the reader tracks position across calls.
type ncmReader struct {
	r   io.Reader
	box [256]byte
	pos int64
}

func (d *ncmReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	for i := 0; i < n; i++ {
		j := byte(d.pos + 1)
		p[i] ^= d.box[(d.box[j]+d.box[(d.box[j]+j)&0xff])&0xff]
		d.pos++
	}
	return n, err
}

// ncmReadBlock reads a uint32-LE length prefix followed by that many bytes.
func ncmReadBlock(r io.Reader) ([]byte, error) {
	n, err := ncmBlockLen(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ncmSkipBlock discards a length-prefixed block without buffering it.
func ncmSkipBlock(r io.Reader) error {
	n, err := ncmBlockLen(r)
	if err != nil {
		return err
	}
	return ncmSkip(r, int64(n))
}

func ncmBlockLen(r io.Reader) (uint32, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(lenBuf[:]), nil
}

func ncmSkip(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
