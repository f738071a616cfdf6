// Package matasano holds the byte helpers shared by the block-mode engine,
// the oracles and the attacks built on top of them.
package matasano

import (
	"bytes"
	cryptorand "crypto/rand"
	"errors"
	"fmt"
)

// BlockSize is the AES block size, and the only block size the oracles use.
const BlockSize = 16

// ErrLengthMismatch is returned by Xor when its inputs differ in length.
var ErrLengthMismatch = errors.New("byte arrays not the same length")

// Xor returns the byte-wise xor of b1 and b2, which must have equal length.
func Xor(b1, b2 []byte) ([]byte, error) {
	if len(b1) != len(b2) {
		return nil, ErrLengthMismatch
	}

	result := make([]byte, len(b1))
	for i := range b1 {
		result[i] = b1[i] ^ b2[i]
	}

	return result, nil
}

// XorInto xors src into dst in place over the shorter of the two lengths.
func XorInto(dst, src []byte) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] ^= src[i]
	}
}

// RepeatingKeyXor xors plaintext against key repeated to its length.
func RepeatingKeyXor(key, plaintext []byte) []byte {
	result := make([]byte, len(plaintext))
	for i := range plaintext {
		result[i] = plaintext[i] ^ key[i%len(key)]
	}
	return result
}

// SplitIntoBlocks cuts b into blockSize chunks. A short final chunk is kept
// at its real length rather than zero-filled. It panics if blockSize is not
// positive.
func SplitIntoBlocks(b []byte, blockSize int) [][]byte {
	if blockSize <= 0 {
		panic(fmt.Sprintf("matasano: block size %d out of range", blockSize))
	}
	var res [][]byte
	for len(b) > blockSize {
		res = append(res, b[:blockSize:blockSize])
		b = b[blockSize:]
	}
	if len(b) > 0 {
		res = append(res, b)
	}
	return res
}

// Block returns the i-th blockSize chunk of b, or nil when b is too short.
func Block(b []byte, blockSize, i int) []byte {
	start, end := i*blockSize, (i+1)*blockSize
	if i < 0 || end > len(b) {
		return nil
	}
	return b[start:end:end]
}

// HasRepeatedBlock reports whether any two blockSize chunks of ct are equal.
func HasRepeatedBlock(ct []byte, blockSize int) bool {
	seen := make(map[string]bool)
	for _, block := range SplitIntoBlocks(ct, blockSize) {
		if seen[string(block)] {
			return true
		}
		seen[string(block)] = true
	}

	return false
}

// Filler returns n copies of b.
func Filler(b byte, n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	return bytes.Repeat([]byte{b}, n)
}

// RandomBytes returns n bytes from crypto/rand. A failing system RNG leaves
// nothing sensible to do, so it panics.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := cryptorand.Read(b); err != nil {
		panic("matasano: reading random bytes: " + err.Error())
	}
	return b
}

// RandomKey returns a fresh AES-128 key.
func RandomKey() []byte {
	return RandomBytes(BlockSize)
}
