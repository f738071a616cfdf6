// Package modes builds the ECB, CBC and CTR block cipher modes by hand on
// top of the single-block AES primitive from crypto/aes.
package modes

import (
	"crypto/aes"
	"errors"
	"fmt"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/pkcs7"
)

// Mode identifies a block cipher mode.
type Mode int

// Block cipher mode flags.
const (
	ECB Mode = iota
	CBC
	CTR
)

func (m Mode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	case CTR:
		return "CTR"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

var (
	// ErrNotBlockAligned is returned when a block mode is handed input that is
	// not a whole number of blocks.
	ErrNotBlockAligned = errors.New("input is not a whole number of blocks")

	// ErrInvalidIV is returned when an IV is not exactly one block long.
	ErrInvalidIV = errors.New("iv must be one block long")
)

// EcbEncryptBlocks encrypts pt under key in ECB mode. No padding is added,
// so pt must be a whole number of blocks.
func EcbEncryptBlocks(key, pt []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(pt)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ecb encrypt: %w: length %d", ErrNotBlockAligned, len(pt))
	}

	ct := make([]byte, len(pt))
	for i := 0; i < len(pt); i += aes.BlockSize {
		block.Encrypt(ct[i:i+aes.BlockSize], pt[i:i+aes.BlockSize])
	}

	return ct, nil
}

// EcbDecryptBlocks is the inverse of EcbEncryptBlocks.
func EcbDecryptBlocks(key, ct []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ecb decrypt: %w: length %d", ErrNotBlockAligned, len(ct))
	}

	pt := make([]byte, len(ct))
	for i := 0; i < len(ct); i += aes.BlockSize {
		block.Decrypt(pt[i:i+aes.BlockSize], ct[i:i+aes.BlockSize])
	}

	return pt, nil
}

// EcbEncrypt pads pt with PKCS#7 and encrypts it under key in ECB mode.
func EcbEncrypt(key, pt []byte) ([]byte, error) {
	return EcbEncryptBlocks(key, pkcs7.Pad(pt, aes.BlockSize))
}

// EcbDecrypt decrypts ct under key in ECB mode and strips the padding.
func EcbDecrypt(key, ct []byte) ([]byte, error) {
	pt, err := EcbDecryptBlocks(key, ct)
	if err != nil {
		return nil, err
	}

	stripped, err := pkcs7.Strip(pt, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("ecb decrypt: %w", err)
	}
	return stripped, nil
}

// CbcEncryptor encrypts and decrypts in CBC mode under a fixed key and IV.
type CbcEncryptor struct {
	Key []byte
	IV  []byte
}

// CbcEncrypt pads pt and encrypts it. Each plaintext block is xored with the
// previous ciphertext block (the IV for the first) before going through ECB.
func (enc CbcEncryptor) CbcEncrypt(pt []byte) ([]byte, error) {
	if len(enc.IV) != aes.BlockSize {
		return nil, fmt.Errorf("cbc encrypt: %w: got %d bytes", ErrInvalidIV, len(enc.IV))
	}

	padded := pkcs7.Pad(pt, aes.BlockSize)
	ct := make([]byte, 0, len(padded))
	prev := enc.IV
	for i := 0; i < len(padded); i += aes.BlockSize {
		xored, err := matasano.Xor(prev, padded[i:i+aes.BlockSize])
		if err != nil {
			return nil, err
		}
		ctBlock, err := EcbEncryptBlocks(enc.Key, xored)
		if err != nil {
			return nil, err
		}
		ct = append(ct, ctBlock...)
		prev = ctBlock
	}

	return ct, nil
}

// CbcDecryptRaw undoes the chaining but leaves any padding in place.
func (enc CbcEncryptor) CbcDecryptRaw(ct []byte) ([]byte, error) {
	if len(enc.IV) != aes.BlockSize {
		return nil, fmt.Errorf("cbc decrypt: %w: got %d bytes", ErrInvalidIV, len(enc.IV))
	}

	pt, err := EcbDecryptBlocks(enc.Key, ct)
	if err != nil {
		return nil, err
	}

	prev := enc.IV
	for i := 0; i < len(ct); i += aes.BlockSize {
		matasano.XorInto(pt[i:i+aes.BlockSize], prev)
		prev = ct[i : i+aes.BlockSize]
	}

	return pt, nil
}

// CbcDecrypt decrypts ct and validates and strips its padding. A padding
// failure is reported as an error wrapping pkcs7.ErrInvalidPadding.
func (enc CbcEncryptor) CbcDecrypt(ct []byte) ([]byte, error) {
	pt, err := enc.CbcDecryptRaw(ct)
	if err != nil {
		return nil, err
	}

	stripped, err := pkcs7.Strip(pt, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("cbc decrypt: %w", err)
	}
	return stripped, nil
}
