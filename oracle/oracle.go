// Package oracle provides the black boxes the attacks run against. Every
// oracle draws its key and any other secrets when it is constructed and
// never changes them afterwards, so one oracle can serve concurrent callers
// and independent oracles never share state.
package oracle

import (
	"bytes"
	mathrand "math/rand"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/modes"
)

// Encrypter is a chosen-plaintext oracle: it encrypts attacker-supplied bytes
// together with whatever it keeps hidden.
type Encrypter interface {
	Encrypt(pt []byte) ([]byte, error)
}

// Prefix lengths used by NewPrefix.
const (
	MinPrefixLen = 5
	MaxPrefixLen = 40
)

// Suffix appends a hidden secret to the attacker's bytes and encrypts the
// result in ECB mode.
type Suffix struct {
	key    []byte
	secret []byte
}

// NewSuffix returns a Suffix oracle hiding secret under a random key.
func NewSuffix(secret []byte) *Suffix {
	return &Suffix{key: matasano.RandomKey(), secret: bytes.Clone(secret)}
}

// Encrypt returns ECB(key, pt || secret).
func (o *Suffix) Encrypt(pt []byte) ([]byte, error) {
	buf := make([]byte, 0, len(pt)+len(o.secret))
	buf = append(buf, pt...)
	buf = append(buf, o.secret...)
	return modes.EcbEncrypt(o.key, buf)
}

// Verify reports whether candidate is the hidden secret.
func (o *Suffix) Verify(candidate []byte) bool {
	return bytes.Equal(o.secret, candidate)
}

// Prefix is like Suffix, but also puts a fixed random-length random prefix in
// front of the attacker's bytes.
type Prefix struct {
	key    []byte
	prefix []byte
	secret []byte
}

// NewPrefix returns a Prefix oracle with a random prefix of MinPrefixLen to
// MaxPrefixLen bytes.
func NewPrefix(secret []byte) *Prefix {
	n := MinPrefixLen + mathrand.Intn(MaxPrefixLen-MinPrefixLen+1)
	return NewPrefixWith(matasano.RandomBytes(n), secret)
}

// NewPrefixWith returns a Prefix oracle with the given prefix.
func NewPrefixWith(prefix, secret []byte) *Prefix {
	return &Prefix{
		key:    matasano.RandomKey(),
		prefix: bytes.Clone(prefix),
		secret: bytes.Clone(secret),
	}
}

// Encrypt returns ECB(key, prefix || pt || secret).
func (o *Prefix) Encrypt(pt []byte) ([]byte, error) {
	buf := make([]byte, 0, len(o.prefix)+len(pt)+len(o.secret))
	buf = append(buf, o.prefix...)
	buf = append(buf, pt...)
	buf = append(buf, o.secret...)
	return modes.EcbEncrypt(o.key, buf)
}

// Verify reports whether candidate is the hidden secret.
func (o *Prefix) Verify(candidate []byte) bool {
	return bytes.Equal(o.secret, candidate)
}

// VerifyPrefixLen reports whether n is the length of the hidden prefix.
func (o *Prefix) VerifyPrefixLen(n int) bool {
	return len(o.prefix) == n
}

// VerifyPayloadLen reports whether n is the length of the hidden secret.
func (o *Prefix) VerifyPayloadLen(n int) bool {
	return len(o.secret) == n
}

// CoinToss is a one-shot encryption under a random key and a randomly chosen
// mode, for testing mode detection.
type CoinToss struct {
	ct   []byte
	mode modes.Mode
}

// NewCoinToss surrounds pt with 5 to 10 random bytes on each side and
// encrypts it under a fresh key, in ECB or CBC (with a random IV) with equal
// probability.
func NewCoinToss(pt []byte) (*CoinToss, error) {
	buf := matasano.RandomBytes(5 + mathrand.Intn(6))
	buf = append(buf, pt...)
	buf = append(buf, matasano.RandomBytes(5+mathrand.Intn(6))...)

	key := matasano.RandomKey()
	o := &CoinToss{mode: modes.ECB}
	var err error
	if mathrand.Intn(2) == 0 {
		o.ct, err = modes.EcbEncrypt(key, buf)
	} else {
		o.mode = modes.CBC
		o.ct, err = modes.CbcEncryptor{Key: key, IV: matasano.RandomBytes(matasano.BlockSize)}.CbcEncrypt(buf)
	}
	if err != nil {
		return nil, err
	}

	return o, nil
}

// Ciphertext returns the encrypted input.
func (o *CoinToss) Ciphertext() []byte {
	return bytes.Clone(o.ct)
}

// Verify reports whether mode is the one that was used.
func (o *CoinToss) Verify(mode modes.Mode) bool {
	return o.mode == mode
}
