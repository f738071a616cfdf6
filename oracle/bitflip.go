package oracle

import (
	"bytes"
	mathrand "math/rand"
	"strings"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/modes"
)

const (
	bitFlipPrefix = "comment1=cooking%20MCs;userdata="
	bitFlipSuffix = ";comment2=%20like%20a%20pound%20of%20bacon"
)

// AdminMarker is the string the bit flipping attacks try to smuggle in.
const AdminMarker = ";admin=true;"

var userdataEscaper = strings.NewReplacer(";", "%3B", "=", "%3D")

// frameUserdata quotes out ';' and '=' from data and wraps it in the fixed
// comment fields.
func frameUserdata(data []byte) []byte {
	return []byte(bitFlipPrefix + userdataEscaper.Replace(string(data)) + bitFlipSuffix)
}

// Cbc encrypts attacker userdata between two fixed comment fields in CBC
// mode, with a key and IV fixed at construction.
type Cbc struct {
	enc modes.CbcEncryptor
}

// NewCbc returns a Cbc oracle with a random key and IV.
func NewCbc() *Cbc {
	return &Cbc{modes.CbcEncryptor{Key: matasano.RandomKey(), IV: matasano.RandomBytes(matasano.BlockSize)}}
}

// Encrypt returns CBC(prefix || escape(data) || suffix).
func (o *Cbc) Encrypt(data []byte) ([]byte, error) {
	return o.enc.CbcEncrypt(frameUserdata(data))
}

// Verify decrypts ct and reports whether it contains AdminMarker. Bad
// padding is an error here, not a false.
func (o *Cbc) Verify(ct []byte) (bool, error) {
	pt, err := o.enc.CbcDecrypt(ct)
	if err != nil {
		return false, err
	}
	return bytes.Contains(pt, []byte(AdminMarker)), nil
}

// Ctr is Cbc's counterpart in CTR mode.
type Ctr struct {
	enc modes.CtrEncryptor
}

// NewCtr returns a Ctr oracle with a random key and nonce.
func NewCtr() *Ctr {
	return &Ctr{modes.CtrEncryptor{Key: matasano.RandomKey(), Nonce: mathrand.Uint64()}}
}

// Encrypt returns CTR(prefix || escape(data) || suffix).
func (o *Ctr) Encrypt(data []byte) ([]byte, error) {
	return o.enc.CtrEncrypt(frameUserdata(data))
}

// Verify decrypts ct and reports whether it contains AdminMarker.
func (o *Ctr) Verify(ct []byte) (bool, error) {
	pt, err := o.enc.CtrDecrypt(ct)
	if err != nil {
		return false, err
	}
	return bytes.Contains(pt, []byte(AdminMarker)), nil
}
