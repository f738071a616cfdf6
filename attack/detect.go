package attack

import (
	"bytes"
	"fmt"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/modes"
	"github.com/nealharris/matasano/oracle"
)

// Bounds on the block sizes DetectBlockSize will consider.
const (
	minBlockSize = 8
	maxBlockSize = 64
)

// DetectBlockSize finds the block size of an ECB oracle. It feeds the oracle
// ever longer runs of one byte until the ciphertext contains three identical
// adjacent chunks; the chunk length is the block size. Because CBC never
// repeats like this, success also shows that the oracle uses ECB.
func DetectBlockSize(o oracle.Encrypter) (int, error) {
	for n := 3 * minBlockSize; n <= 4*maxBlockSize; n++ {
		ct, err := o.Encrypt(matasano.Filler(probeByte, n))
		if err != nil {
			return 0, err
		}

		for size := minBlockSize; size <= maxBlockSize && 3*size <= len(ct); size++ {
			if len(ct)%size == 0 && hasRun(ct, size, 3) {
				return size, nil
			}
		}
	}

	return 0, ErrBlockSizeNotFound
}

// hasRun reports whether ct contains run identical adjacent blockSize chunks.
func hasRun(ct []byte, blockSize, run int) bool {
	length := 1
	for i := 1; (i+1)*blockSize <= len(ct); i++ {
		if bytes.Equal(matasano.Block(ct, blockSize, i), matasano.Block(ct, blockSize, i-1)) {
			length++
			if length >= run {
				return true
			}
		} else {
			length = 1
		}
	}
	return false
}

// BlockSizeByLength finds the block size of any padding block mode by
// growing the input one byte at a time and measuring the jump in ciphertext
// length.
func BlockSizeByLength(o oracle.Encrypter) (int, error) {
	ct, err := o.Encrypt(nil)
	if err != nil {
		return 0, err
	}
	baseSize := len(ct)

	for i := 1; i <= maxBlockSize; i++ {
		ct, err = o.Encrypt(matasano.Filler(probeByte, i))
		if err != nil {
			return 0, err
		}
		if len(ct) > baseSize {
			return len(ct) - baseSize, nil
		}
	}

	return 0, ErrBlockSizeNotFound
}

// IsEcb reports whether ct contains a repeated block, which practically only
// happens under ECB.
func IsEcb(ct []byte, blockSize int) bool {
	return matasano.HasRepeatedBlock(ct, blockSize)
}

// GuessMode guesses whether ct, the encryption of input with several
// identical blocks, was produced by ECB or CBC.
func GuessMode(ct []byte) modes.Mode {
	if IsEcb(ct, matasano.BlockSize) {
		return modes.ECB
	}
	return modes.CBC
}

// DetectMode returns the mode used by the oracle. Ciphertext that grows one
// byte at a time comes from a stream mode, which can only be CTR; otherwise
// repeated blocks tell ECB from CBC.
func DetectMode(o oracle.Encrypter) (modes.Mode, error) {
	blockSize, err := BlockSizeByLength(o)
	if err != nil {
		return 0, err
	}
	if blockSize == 1 {
		return modes.CTR, nil
	}

	// Four blocks of input leave at least three full identical blocks
	// whatever the oracle puts in front.
	ct, err := o.Encrypt(matasano.Filler(probeByte, 4*blockSize))
	if err != nil {
		return 0, err
	}
	if IsEcb(ct, blockSize) {
		return modes.ECB, nil
	}
	return modes.CBC, nil
}

// Alignment says how to line attacker input up with the oracle's blocks:
// after PadLen bytes of filler, the next input byte starts block BlockIndex.
type Alignment struct {
	PadLen     int
	BlockIndex int
}

// PrefixLen is the length of whatever the oracle puts before the input.
func (a Alignment) PrefixLen(blockSize int) int {
	return a.BlockIndex*blockSize - a.PadLen
}

// DetectAlignment works out an Alignment for an ECB oracle that hides an
// unknown prefix. For each filler length it sends two identical blocks after
// the filler, once made of the probe byte and once of a second byte, and
// looks for the first pair of equal ciphertext blocks. The pair only counts
// if it is equal in both runs and changes between them, so it is made of
// attacker bytes rather than of a prefix or payload that happens to repeat.
func DetectAlignment(o oracle.Encrypter, blockSize int) (Alignment, error) {
	for padLen := 0; padLen < blockSize; padLen++ {
		i, err := pairIndex(o, blockSize, padLen)
		if err != nil {
			return Alignment{}, err
		}
		if i >= 0 {
			a := Alignment{PadLen: padLen, BlockIndex: i}
			logger.Printf("aligned input with %d filler bytes at block %d", a.PadLen, a.BlockIndex)
			return a, nil
		}
	}

	return Alignment{}, ErrAlignmentNotFound
}

// pairIndex encrypts padLen filler bytes followed by two blocks of each
// probe byte in turn, and returns the index of the first block that equals
// its successor in both ciphertexts but differs between them, or -1.
func pairIndex(o oracle.Encrypter, blockSize, padLen int) (int, error) {
	a, err := o.Encrypt(append(matasano.Filler(fillerByte, padLen), matasano.Filler(probeByte, 2*blockSize)...))
	if err != nil {
		return 0, err
	}
	b, err := o.Encrypt(append(matasano.Filler(fillerByte, padLen), matasano.Filler(altByte, 2*blockSize)...))
	if err != nil {
		return 0, err
	}

	for i := 0; (i+2)*blockSize <= len(a) && (i+2)*blockSize <= len(b); i++ {
		blockA, blockB := matasano.Block(a, blockSize, i), matasano.Block(b, blockSize, i)
		if bytes.Equal(blockA, blockB) {
			continue
		}
		if bytes.Equal(blockA, matasano.Block(a, blockSize, i+1)) && bytes.Equal(blockB, matasano.Block(b, blockSize, i+1)) {
			return i, nil
		}
	}
	return -1, nil
}

// DetectPayloadLength returns the number of hidden bytes the oracle appends
// after the input. It adds input one byte at a time until the padding spills
// into a new block; at that point the plaintext filled the old ciphertext
// exactly.
func DetectPayloadLength(o oracle.Encrypter, blockSize int, a Alignment) (int, error) {
	ct, err := o.Encrypt(nil)
	if err != nil {
		return 0, err
	}
	baseSize := len(ct)

	for n := 1; n <= blockSize; n++ {
		ct, err = o.Encrypt(matasano.Filler(fillerByte, n))
		if err != nil {
			return 0, err
		}
		if len(ct) == baseSize {
			continue
		}
		if len(ct) != baseSize+blockSize {
			return 0, fmt.Errorf("%w: ciphertext grew from %d to %d bytes", ErrPayloadLength, baseSize, len(ct))
		}

		payloadLen := baseSize - n - a.PrefixLen(blockSize)
		if payloadLen < 0 {
			return 0, fmt.Errorf("%w: prefix of %d bytes does not fit", ErrPayloadLength, a.PrefixLen(blockSize))
		}
		logger.Printf("payload is %d bytes", payloadLen)
		return payloadLen, nil
	}

	return 0, ErrPayloadLength
}
