// Package pkcs7 implements PKCS#7 padding
// (see https://tools.ietf.org/html/rfc5652#section-6.3).
package pkcs7

import (
	"errors"
	"fmt"
)

// ErrInvalidPadding is returned by Strip when the input does not end in
// well-formed padding. The padding oracle attack depends on this condition
// being distinguishable from every other failure.
var ErrInvalidPadding = errors.New("invalid PKCS7 padding")

// Pad returns a copy of b with padding appended up to a multiple of
// blockSize. If b is already a whole number of blocks, a full block of
// padding is added so there is always at least one padding byte.
func Pad(b []byte, blockSize int) []byte {
	checkBlockSize(blockSize)

	n := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}

	return padded
}

// Unpad removes as many trailing bytes as the last byte says, without
// checking anything else. Use it only on plaintext that is already trusted.
func Unpad(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	n := int(b[len(b)-1])
	if n > len(b) {
		return b
	}
	return b[:len(b)-n]
}

// Strip validates and removes padding from b. Like Pad, it panics if
// blockSize is not between 1 and 255.
func Strip(b []byte, blockSize int) ([]byte, error) {
	checkBlockSize(blockSize)
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidPadding)
	}
	if len(b)%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrInvalidPadding, len(b), blockSize)
	}

	last := b[len(b)-1]
	if last == 0 || int(last) > blockSize {
		return nil, fmt.Errorf("%w: pad byte %d", ErrInvalidPadding, last)
	}
	for _, p := range b[len(b)-int(last):] {
		if p != last {
			return nil, fmt.Errorf("%w: padding byte %d != %d", ErrInvalidPadding, p, last)
		}
	}

	return b[:len(b)-int(last)], nil
}

// Valid reports whether b ends in well-formed padding.
func Valid(b []byte, blockSize int) bool {
	_, err := Strip(b, blockSize)
	return err == nil
}

func checkBlockSize(blockSize int) {
	if blockSize <= 0 || blockSize > 0xff {
		panic(fmt.Sprintf("pkcs7: block size %d out of range", blockSize))
	}
}
