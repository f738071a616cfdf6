package attack

import (
	"bytes"
	"fmt"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/oracle"
)

// firstDifference returns the index of the first byte at which two encryptions
// that differ only in the first input byte disagree, or -1.
func firstDifference(o oracle.Encrypter) (int, error) {
	a, err := o.Encrypt([]byte{probeByte})
	if err != nil {
		return 0, err
	}
	b, err := o.Encrypt([]byte{altByte})
	if err != nil {
		return 0, err
	}

	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return i, nil
		}
	}
	return -1, nil
}

// ForgeAdminCbc performs the CBC bit flipping attack: it returns ciphertext
// that decrypts, under the oracle's key and IV, to plaintext containing
// oracle.AdminMarker even though the oracle escapes ';' and '='.
//
// The attack sends three blocks of filler, so at least the two blocks after
// the one the input starts in hold nothing but filler. CBC xors each
// decrypted block with the previous ciphertext block, so xoring
// filler^marker into the first of those ciphertext blocks writes the marker
// into the plaintext of the second, at the cost of garbling the first.
func ForgeAdminCbc(o oracle.Encrypter) ([]byte, error) {
	blockSize, err := BlockSizeByLength(o)
	if err != nil {
		return nil, err
	}
	if len(oracle.AdminMarker) > blockSize {
		return nil, fmt.Errorf("%w: marker does not fit in a %d byte block", ErrInvalidCiphertext, blockSize)
	}

	offset, err := firstDifference(o)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, ErrTargetNotFound
	}
	first := offset / blockSize

	ct, err := o.Encrypt(matasano.Filler(probeByte, 3*blockSize))
	if err != nil {
		return nil, err
	}
	if len(ct) < (first+3)*blockSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrInvalidCiphertext)
	}

	delta, err := matasano.Xor(matasano.Filler(probeByte, len(oracle.AdminMarker)), []byte(oracle.AdminMarker))
	if err != nil {
		return nil, err
	}

	forged := bytes.Clone(ct)
	matasano.XorInto(forged[(first+1)*blockSize:], delta)
	return forged, nil
}

// ForgeAdminCtr is the CTR counterpart of ForgeAdminCbc. In CTR the
// ciphertext byte and plaintext byte line up exactly, so flipping the
// ciphertext under the input changes only that input.
func ForgeAdminCtr(o oracle.Encrypter) ([]byte, error) {
	offset, err := firstDifference(o)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, ErrTargetNotFound
	}

	ct, err := o.Encrypt(matasano.Filler(probeByte, len(oracle.AdminMarker)))
	if err != nil {
		return nil, err
	}
	if len(ct) < offset+len(oracle.AdminMarker) {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrInvalidCiphertext)
	}

	delta, err := matasano.Xor(matasano.Filler(probeByte, len(oracle.AdminMarker)), []byte(oracle.AdminMarker))
	if err != nil {
		return nil, err
	}

	forged := bytes.Clone(ct)
	matasano.XorInto(forged[offset:], delta)
	return forged, nil
}
