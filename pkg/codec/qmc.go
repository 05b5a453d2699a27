package codec

import "io"

// qmcKey is the 128-byte static key of the legacy QMC scheme. Every payload
// byte is XORed with a mask derived from its absolute stream offset, so
// decoding and encoding are the same operation.
var qmcKey = [128]byte{
	0xc3, 0x4a, 0xd6, 0xca, 0x90, 0x67, 0xf7, 0x52,
	0xd8, 0xa1, 0x66, 0x62, 0x9f, 0x5b, 0x09, 0x00,
	0xc3, 0x5e, 0x95, 0x23, 0x9f, 0x13, 0x11, 0x7e,
	0xd8, 0x92, 0x3f, 0xbc, 0x90, 0xbb, 0x74, 0x0e,
	0xc3, 0x47, 0x74, 0x3d, 0x90, 0xaa, 0x3f, 0x51,
	0xd8, 0xf4, 0x11, 0x84, 0x9f, 0xde, 0x95, 0x1d,
	0xc3, 0xc6, 0x09, 0xd5, 0x9f, 0xfa, 0x66, 0xf9,
	0xd8, 0xf0, 0xf7, 0xa0, 0x90, 0xa1, 0xd6, 0xf3,
	0xc3, 0xf3, 0xd6, 0xa1, 0x90, 0xa0, 0xf7, 0xf0,
	0xd8, 0xf9, 0x66, 0xfa, 0x9f, 0xd5, 0x09, 0xc6,
	0xc3, 0x1d, 0x95, 0xde, 0x9f, 0x84, 0x11, 0xf4,
	0xd8, 0x51, 0x3f, 0xaa, 0x90, 0x3d, 0x74, 0x47,
	0xc3, 0x0e, 0x74, 0xbb, 0x90, 0xbc, 0x3f, 0x92,
	0xd8, 0x7e, 0x11, 0x13, 0x9f, 0x23, 0x95, 0x5e,
	0xc3, 0x00, 0x09, 0x5b, 0x9f, 0x62, 0x66, 0xa1,
	0xd8, 0x52, 0xf7, 0x67, 0x90, 0xca, 0xd6, 0x4a,
}

// qmcMaskAt derives the XOR mask for the byte at the given stream offset.
// The scheme folds large offsets back into the 15-bit window before the
// quadratic spread over the key table.
func qmcMaskAt(offset int64) byte {
	if offset > 0x7FFF {
		offset %= 0x7FFF
	}
	return qmcKey[(offset*offset+71214)%128]
}

// qmcMaskBytes applies the mask to b as if it started at offset zero. Used
// to precompute detection signatures; the transform is its own inverse.
func qmcMaskBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = v ^ qmcMaskAt(int64(i))
	}
	return out
}

// qmcReader decodes a QMC stream. The mask depends on the absolute offset,
// so the reader tracks position across Read calls.
type qmcReader struct {
	r      io.Reader
	offset int64
}

// NewQMCReader wraps a raw QMC container stream and returns a reader over
// the decoded payload. QMC has no header; decoding starts at byte zero.
func NewQMCReader(r io.Reader) (io.Reader, error) {
	return &qmcReader{r: r}, nil
}

func (q *qmcReader) Read(p []byte) (int, error) {
	n, err := q.r.Read(p)
	for i := 0; i < n; i++ {
		p[i] ^= qmcMaskAt(q.offset)
		q.offset++
	}
	return n, err
}
