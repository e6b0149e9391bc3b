// Package pcm decodes and encodes raw PCM sample blocks.
package pcm

import (
	"errors"
	"fmt"
)

// ErrUnsupportedWidth is returned for sample widths outside 1..4 bytes.
var ErrUnsupportedWidth = errors.New("unsupported sample width")

// Signedness selects how raw sample bytes are interpreted.
type Signedness int

const (
	// SignednessAuto follows format convention: 1-byte samples are
	// unsigned, wider samples are signed.
	SignednessAuto Signedness = iota
	SignednessSigned
	SignednessUnsigned
)

// Codec converts between raw sample byte blocks and integer amplitudes.
// A codec is fixed to one width/endianness/signedness for a stream's lifetime.
type Codec struct {
	width     int // bytes per sample, 1..4
	bigEndian bool
	signed    bool
}

// NewCodec builds a codec for the given storage width in bytes.
// Widths 1 through 4 are accepted, including 3-byte packed formats such as
// S24_3LE; anything else fails with ErrUnsupportedWidth.
func NewCodec(widthBytes int, bigEndian bool, signedness Signedness) (*Codec, error) {
	if widthBytes < 1 || widthBytes > 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedWidth, widthBytes)
	}

	signed := false
	switch signedness {
	case SignednessAuto:
		signed = widthBytes > 1
	case SignednessSigned:
		signed = true
	case SignednessUnsigned:
		signed = false
	}

	return &Codec{
		width:     widthBytes,
		bigEndian: bigEndian,
		signed:    signed,
	}, nil
}

// Width returns the storage width in bytes.
func (c *Codec) Width() int { return c.width }

// Signed reports whether samples are interpreted as signed integers.
func (c *Codec) Signed() bool { return c.signed }

// Decode interprets the leading Width() bytes of block as one sample.
// Narrow widths are sign-extended (or zero-extended for unsigned formats)
// to a native integer.
func (c *Codec) Decode(block []byte) int {
	var u uint32
	if c.bigEndian {
		for i := 0; i < c.width; i++ {
			u = u<<8 | uint32(block[i])
		}
	} else {
		for i := c.width - 1; i >= 0; i-- {
			u = u<<8 | uint32(block[i])
		}
	}

	if !c.signed {
		return int(u)
	}

	// Sign-extend by shifting the sample's MSB up to bit 31 and back.
	shift := uint(32 - c.width*8)
	return int(int32(u<<shift) >> shift)
}

// Encode writes sample v into the leading Width() bytes of dst, the exact
// inverse of Decode for values representable at the codec's width.
func (c *Codec) Encode(v int, dst []byte) {
	u := uint32(int32(v))
	if c.bigEndian {
		for i := c.width - 1; i >= 0; i-- {
			dst[i] = byte(u)
			u >>= 8
		}
	} else {
		for i := 0; i < c.width; i++ {
			dst[i] = byte(u)
			u >>= 8
		}
	}
}

// FullScale returns 2^(width*8), the denominator used when relating raw
// sample deltas to decibels-relative-to-full-scale.
func (c *Codec) FullScale() float64 {
	return float64(uint64(1) << uint(c.width*8))
}
