package attack

import (
	"errors"
	"fmt"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/oracle"
)

// Editor rewrites plaintext inside a CTR ciphertext without revealing the
// key.
type Editor interface {
	Edit(ct []byte, offset int, newText []byte) ([]byte, error)
}

// BreakCtrEdit recovers the plaintext of ct from an edit oracle. Writing
// zeros over the whole ciphertext makes the oracle return the bare
// keystream, and keystream xor ct is the plaintext.
func BreakCtrEdit(o Editor, ct []byte) ([]byte, error) {
	stream, err := o.Edit(ct, 0, make([]byte, len(ct)))
	if err != nil {
		return nil, err
	}
	return matasano.Xor(stream, ct)
}

// KeyAsIVOracle is a CBC oracle whose IV is its key and whose decryption
// errors leak the plaintext.
type KeyAsIVOracle interface {
	oracle.Encrypter
	Decrypt(ct []byte) error
}

// RecoverKeyAsIV recovers the key of a CBC oracle that also uses it as the
// IV. It submits C1 || 0 || C1 followed by the rest of a genuine ciphertext,
// which keeps the padding intact. The first plaintext block comes back as
// D(C1) xor key and the third as D(C1), so xoring them gives the key.
func RecoverKeyAsIV(o KeyAsIVOracle) ([]byte, error) {
	bs := matasano.BlockSize
	ct, err := o.Encrypt(matasano.Filler(probeByte, 3*bs))
	if err != nil {
		return nil, err
	}
	if len(ct) < 5*bs {
		return nil, fmt.Errorf("%w: need at least 5 blocks, got %d bytes", ErrInvalidCiphertext, len(ct))
	}

	first := ct[:bs]
	tampered := make([]byte, 0, len(ct))
	tampered = append(tampered, first...)
	tampered = append(tampered, make([]byte, bs)...)
	tampered = append(tampered, first...)
	tampered = append(tampered, ct[3*bs:]...)

	err = o.Decrypt(tampered)
	var leak *oracle.HighASCIIError
	if !errors.As(err, &leak) {
		if err == nil {
			err = ErrTargetNotFound
		}
		return nil, fmt.Errorf("tampered ciphertext did not leak plaintext: %w", err)
	}
	if len(leak.Plaintext) < 3*bs {
		return nil, fmt.Errorf("%w: leaked plaintext is %d bytes", ErrInvalidCiphertext, len(leak.Plaintext))
	}

	return matasano.Xor(leak.Plaintext[:bs], leak.Plaintext[2*bs:3*bs])
}
