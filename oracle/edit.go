package oracle

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/modes"
)

// ErrEditOutOfRange is returned when an edit does not fit inside the
// ciphertext.
var ErrEditOutOfRange = errors.New("edit out of range")

// CtrEdit holds a CTR encryption of a hidden plaintext and offers random
// access writes into any ciphertext under the same key and nonce.
type CtrEdit struct {
	enc        modes.CtrEncryptor
	plaintext  []byte
	ciphertext []byte
}

// NewCtrEdit encrypts plaintext under a random key and nonce 0.
func NewCtrEdit(plaintext []byte) (*CtrEdit, error) {
	enc := modes.CtrEncryptor{Key: matasano.RandomKey()}
	ct, err := enc.CtrEncrypt(plaintext)
	if err != nil {
		return nil, err
	}

	return &CtrEdit{enc: enc, plaintext: bytes.Clone(plaintext), ciphertext: ct}, nil
}

// Ciphertext returns the encrypted hidden plaintext.
func (o *CtrEdit) Ciphertext() []byte {
	return bytes.Clone(o.ciphertext)
}

// Edit returns a copy of ct in which the plaintext starting at offset has
// been replaced by newText and re-encrypted.
func (o *CtrEdit) Edit(ct []byte, offset int, newText []byte) ([]byte, error) {
	end := offset + len(newText)
	if offset < 0 || end > len(ct) {
		return nil, fmt.Errorf("%w: [%d, %d) in %d bytes", ErrEditOutOfRange, offset, end, len(ct))
	}

	stream, err := o.enc.Keystream(end)
	if err != nil {
		return nil, err
	}

	edited := bytes.Clone(ct)
	for i, b := range newText {
		edited[offset+i] = b ^ stream[offset+i]
	}
	return edited, nil
}

// Verify reports whether candidate is the hidden plaintext.
func (o *CtrEdit) Verify(candidate []byte) bool {
	return bytes.Equal(o.plaintext, candidate)
}
