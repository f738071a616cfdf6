package oracle

import (
	"bytes"
	"errors"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/modes"
	"github.com/nealharris/matasano/pkcs7"
)

// CbcPadding holds one CBC encryption of a hidden plaintext and answers only
// whether a candidate ciphertext decrypts to validly padded plaintext.
type CbcPadding struct {
	enc        modes.CbcEncryptor
	plaintext  []byte
	ciphertext []byte
}

// NewCbcPadding encrypts plaintext under a random key and IV.
func NewCbcPadding(plaintext []byte) (*CbcPadding, error) {
	enc := modes.CbcEncryptor{Key: matasano.RandomKey(), IV: matasano.RandomBytes(matasano.BlockSize)}
	ct, err := enc.CbcEncrypt(plaintext)
	if err != nil {
		return nil, err
	}

	return &CbcPadding{enc: enc, plaintext: bytes.Clone(plaintext), ciphertext: ct}, nil
}

// IV returns the IV the ciphertext was encrypted with.
func (o *CbcPadding) IV() []byte {
	return bytes.Clone(o.enc.IV)
}

// Ciphertext returns the encrypted hidden plaintext.
func (o *CbcPadding) Ciphertext() []byte {
	return bytes.Clone(o.ciphertext)
}

// CheckPadding decrypts ct under the hidden key and IV and reports whether
// its padding is valid. Padding failures are a plain false; malformed
// ciphertext is an error.
func (o *CbcPadding) CheckPadding(ct []byte) (bool, error) {
	_, err := o.enc.CbcDecrypt(ct)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pkcs7.ErrInvalidPadding):
		return false, nil
	}
	return false, err
}

// Verify reports whether candidate is the hidden plaintext.
func (o *CbcPadding) Verify(candidate []byte) bool {
	return bytes.Equal(o.plaintext, candidate)
}
