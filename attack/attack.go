// Package attack implements chosen-plaintext and padding oracle attacks on
// the block modes in package modes. None of the attacks sees a key; each one
// only queries an oracle.
//
// Attacks issue their queries one at a time, because every probe depends on
// what earlier probes revealed. They never retry: oracles are deterministic,
// so asking the same question twice cannot change the answer. Any result the
// attack's model of the oracle cannot explain aborts the attack with one of
// the errors below.
package attack

import (
	"errors"
	"io"
	"log"
)

var (
	// ErrBlockSizeNotFound is returned when probing never shows a block
	// structure within the probe bounds.
	ErrBlockSizeNotFound = errors.New("unable to determine block size")

	// ErrNotEcb is returned by the ECB attacks when the oracle does not leak
	// repeated blocks.
	ErrNotEcb = errors.New("oracle does not encrypt in ECB mode")

	// ErrAlignmentNotFound is returned when no amount of filler lines the
	// attacker's bytes up with a block boundary.
	ErrAlignmentNotFound = errors.New("unable to align input to a block boundary")

	// ErrPayloadLength is returned when the hidden payload length cannot be
	// derived from ciphertext lengths.
	ErrPayloadLength = errors.New("unable to determine payload length")

	// ErrNoCandidate is returned when no byte value explains an oracle answer.
	ErrNoCandidate = errors.New("no candidate byte matched")

	// ErrAmbiguousPadding is returned when the padding oracle accepts more
	// probes for a byte than the attack can tell apart.
	ErrAmbiguousPadding = errors.New("ambiguous padding oracle answers")

	// ErrInvalidCiphertext is returned when the ciphertext handed to an
	// attack has the wrong shape.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrTargetNotFound is returned when the bit flipping attacks cannot
	// locate their input in the ciphertext.
	ErrTargetNotFound = errors.New("unable to locate attacker input in ciphertext")
)

// Bytes the attacks send to oracles. The filler is only ever used to shift
// other input around, so it must differ from both probe bytes.
const (
	fillerByte = 'F'
	probeByte  = 'A'
	altByte    = 'B'
)

var logger = log.New(io.Discard, "attack: ", 0)

// SetLogger directs progress messages to l. Messages are discarded until it
// is called. It is not safe to call while attacks are running.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger = l
}
