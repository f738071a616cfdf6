package attack

import (
	"fmt"

	"github.com/nealharris/matasano/english"
)

// BreakFixedNonceCtr recovers plaintexts that were all encrypted in CTR mode
// under the same key and nonce. Reusing the nonce reuses the keystream, so
// once every ciphertext is cut to the length of the shortest, their
// concatenation is a repeating-key xor with a key as long as that length.
// Only the first len(shortest) bytes of each plaintext are returned.
func BreakFixedNonceCtr(cts [][]byte) ([][]byte, error) {
	if len(cts) == 0 {
		return nil, fmt.Errorf("%w: no ciphertexts", ErrInvalidCiphertext)
	}

	minLength := len(cts[0])
	for _, ct := range cts {
		if len(ct) < minLength {
			minLength = len(ct)
		}
	}
	if minLength == 0 {
		return nil, fmt.Errorf("%w: empty ciphertext", ErrInvalidCiphertext)
	}

	joined := make([]byte, 0, minLength*len(cts))
	for _, ct := range cts {
		joined = append(joined, ct[:minLength]...)
	}

	pt, _ := english.DecryptRepeatingKeyXor(joined, minLength)

	result := make([][]byte, len(cts))
	for i := range result {
		result[i] = pt[i*minLength : (i+1)*minLength]
	}
	return result, nil
}
