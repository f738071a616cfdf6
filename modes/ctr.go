package modes

import (
	"crypto/aes"
	"encoding/binary"
)

// CtrEncryptor is AES in counter mode. The counter block is the nonce
// followed by the block index, both as little-endian 64-bit integers.
type CtrEncryptor struct {
	Key   []byte
	Nonce uint64
}

// Keystream returns the first n bytes of keystream.
func (enc CtrEncryptor) Keystream(n int) ([]byte, error) {
	numBlocks := (n + aes.BlockSize - 1) / aes.BlockSize
	counters := make([]byte, numBlocks*aes.BlockSize)
	for i := 0; i < numBlocks; i++ {
		binary.LittleEndian.PutUint64(counters[i*aes.BlockSize:], enc.Nonce)
		binary.LittleEndian.PutUint64(counters[i*aes.BlockSize+8:], uint64(i))
	}

	stream, err := EcbEncryptBlocks(enc.Key, counters)
	if err != nil {
		return nil, err
	}
	return stream[:n], nil
}

// CtrEncrypt xors pt against the keystream. No padding is involved, so pt
// may have any length.
func (enc CtrEncryptor) CtrEncrypt(pt []byte) ([]byte, error) {
	stream, err := enc.Keystream(len(pt))
	if err != nil {
		return nil, err
	}

	for i := range stream {
		stream[i] ^= pt[i]
	}
	return stream, nil
}

// CtrDecrypt is the same operation as CtrEncrypt.
func (enc CtrEncryptor) CtrDecrypt(ct []byte) ([]byte, error) {
	return enc.CtrEncrypt(ct)
}
