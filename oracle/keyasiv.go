package oracle

import (
	"bytes"
	"fmt"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/modes"
)

// HighASCIIError is returned by CbcKeyAsIV.Decrypt when the plaintext is not
// 7-bit ASCII. Like a careless server, it echoes the offending plaintext.
type HighASCIIError struct {
	Plaintext []byte
}

func (e *HighASCIIError) Error() string {
	return fmt.Sprintf("invalid plaintext: %q", e.Plaintext)
}

// CbcKeyAsIV is the Cbc oracle with one more mistake: the key doubles as the
// IV.
type CbcKeyAsIV struct {
	enc modes.CbcEncryptor
}

// NewCbcKeyAsIV returns a CbcKeyAsIV oracle with a random key.
func NewCbcKeyAsIV() *CbcKeyAsIV {
	key := matasano.RandomKey()
	return &CbcKeyAsIV{modes.CbcEncryptor{Key: key, IV: bytes.Clone(key)}}
}

// Encrypt returns CBC(prefix || escape(data) || suffix).
func (o *CbcKeyAsIV) Encrypt(data []byte) ([]byte, error) {
	return o.enc.CbcEncrypt(frameUserdata(data))
}

// Decrypt decrypts ct and checks that the result is ASCII. It returns
// a *HighASCIIError if not.
func (o *CbcKeyAsIV) Decrypt(ct []byte) error {
	pt, err := o.enc.CbcDecrypt(ct)
	if err != nil {
		return err
	}

	for _, b := range pt {
		if b > 0x7f {
			return &HighASCIIError{Plaintext: pt}
		}
	}
	return nil
}

// VerifyKey reports whether key is the hidden key.
func (o *CbcKeyAsIV) VerifyKey(key []byte) bool {
	return bytes.Equal(o.enc.Key, key)
}
