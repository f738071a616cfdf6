package attack

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/english"
	"github.com/nealharris/matasano/oracle"
	"github.com/nealharris/matasano/pkcs7"
)

// scoreContext is how much recovered plaintext is used to rank the next
// byte's candidates.
const scoreContext = 32

// ecbTarget is what byte-at-a-time decryption learns about an oracle before
// recovering anything.
type ecbTarget struct {
	o          oracle.Encrypter
	blockSize  int
	align      Alignment
	payloadLen int

	// ciphertexts for each filler length, which only depend on the filler
	targets map[int][]byte
}

func newEcbTarget(o oracle.Encrypter) (*ecbTarget, error) {
	blockSize, err := DetectBlockSize(o)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEcb, err)
	}

	align, err := DetectAlignment(o, blockSize)
	if err != nil {
		return nil, err
	}

	payloadLen, err := DetectPayloadLength(o, blockSize, align)
	if err != nil {
		return nil, err
	}

	return &ecbTarget{
		o:          o,
		blockSize:  blockSize,
		align:      align,
		payloadLen: payloadLen,
		targets:    make(map[int][]byte),
	}, nil
}

// fillerLen returns how many filler bytes make payload byte i the last byte
// of a block.
func (t *ecbTarget) fillerLen(i int) int {
	return t.blockSize - 1 - i%t.blockSize
}

// target returns the ciphertext block that ends with payload byte i.
func (t *ecbTarget) target(i int) ([]byte, error) {
	n := t.fillerLen(i)
	ct, ok := t.targets[n]
	if !ok {
		var err error
		ct, err = t.o.Encrypt(matasano.Filler(fillerByte, t.align.PadLen+n))
		if err != nil {
			return nil, err
		}
		t.targets[n] = ct
	}

	block := matasano.Block(ct, t.blockSize, t.align.BlockIndex+i/t.blockSize)
	if block == nil {
		return nil, fmt.Errorf("%w: ciphertext too short for byte %d", ErrPayloadLength, i)
	}
	return block, nil
}

// window returns the blockSize-1 plaintext bytes that precede the next
// payload byte inside its block when target's filler is in place.
func (t *ecbTarget) window(known []byte) []byte {
	stream := append(matasano.Filler(fillerByte, t.fillerLen(len(known))), known...)
	return stream[len(stream)-(t.blockSize-1):]
}

// probe returns input that puts window followed by one candidate byte into
// block BlockIndex, leaving room for the candidate at the end.
func (t *ecbTarget) probe(window []byte) []byte {
	input := matasano.Filler(fillerByte, t.align.PadLen)
	input = append(input, window...)
	return append(input, 0)
}

// rankCandidates orders all byte values by how plausible each makes the
// recovered text as English, best first. Ties keep english.Ranked order.
func rankCandidates(known []byte) []byte {
	ctx := known
	if len(ctx) > scoreContext {
		ctx = ctx[len(ctx)-scoreContext:]
	}

	candidates := append([]byte{}, english.Ranked()...)
	scores := make(map[byte]uint32, len(candidates))
	buf := append(append([]byte{}, ctx...), 0)
	for _, c := range candidates {
		buf[len(buf)-1] = c
		scores[c] = english.Score(buf)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i]] < scores[candidates[j]]
	})
	return candidates
}

// BreakEcb recovers the payload an ECB oracle appends after the attacker's
// input, one byte at a time. It handles oracles that also hide a prefix of
// unknown length. Candidates for each byte are tried most plausible first and
// the search stops at the first match.
func BreakEcb(o oracle.Encrypter) ([]byte, error) {
	t, err := newEcbTarget(o)
	if err != nil {
		return nil, err
	}

	known := make([]byte, 0, t.payloadLen)
	for len(known) < t.payloadLen {
		want, err := t.target(len(known))
		if err != nil {
			return nil, err
		}

		input := t.probe(t.window(known))
		found := false
		for _, c := range rankCandidates(known) {
			input[len(input)-1] = c
			ct, err := o.Encrypt(input)
			if err != nil {
				return nil, err
			}
			if bytes.Equal(matasano.Block(ct, t.blockSize, t.align.BlockIndex), want) {
				known = append(known, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: payload byte %d", ErrNoCandidate, len(known))
		}
	}

	return known, nil
}

// BreakEcbDictionary recovers the same payload as BreakEcb, but spends a
// single query per byte: the query carries one block for every candidate
// value, and the resulting ciphertext blocks form a lookup table from block
// to byte.
func BreakEcbDictionary(o oracle.Encrypter) ([]byte, error) {
	t, err := newEcbTarget(o)
	if err != nil {
		return nil, err
	}

	known := make([]byte, 0, t.payloadLen)
	for len(known) < t.payloadLen {
		want, err := t.target(len(known))
		if err != nil {
			return nil, err
		}

		window := t.window(known)
		input := matasano.Filler(fillerByte, t.align.PadLen)
		for c := 0; c < 256; c++ {
			input = append(input, window...)
			input = append(input, byte(c))
		}
		ct, err := o.Encrypt(input)
		if err != nil {
			return nil, err
		}

		dict := make(map[string]byte, 256)
		for c := 0; c < 256; c++ {
			block := matasano.Block(ct, t.blockSize, t.align.BlockIndex+c)
			if block == nil {
				return nil, fmt.Errorf("%w: dictionary query came back short", ErrInvalidCiphertext)
			}
			dict[string(block)] = byte(c)
		}

		c, ok := dict[string(want)]
		if !ok {
			return nil, fmt.Errorf("%w: payload byte %d", ErrNoCandidate, len(known))
		}
		known = append(known, c)
	}

	return known, nil
}

// roleValue is the role every profile the oracle encodes ends with.
const roleValue = "user"

// ForgeAdminProfile performs the ECB cut-and-paste attack against a profile
// oracle: it returns ciphertext that decrypts to a profile with the admin
// role, built only from ciphertext the oracle produced.
//
// One query lines up "admin" plus valid padding as a block of its own and
// keeps that block. A second query picks an email length that ends a block
// right after "role="; the forgery is that ciphertext up to the boundary
// followed by the saved block.
func ForgeAdminProfile(o oracle.Encrypter) ([]byte, error) {
	blockSize, err := DetectBlockSize(o)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEcb, err)
	}
	align, err := DetectAlignment(o, blockSize)
	if err != nil {
		return nil, err
	}
	suffixLen, err := DetectPayloadLength(o, blockSize, align)
	if err != nil {
		return nil, err
	}
	if suffixLen < len(roleValue) {
		return nil, fmt.Errorf("%w: %d bytes after the email", ErrPayloadLength, suffixLen)
	}

	input := matasano.Filler(fillerByte, align.PadLen)
	input = append(input, pkcs7.Pad([]byte("admin"), blockSize)...)
	ct, err := o.Encrypt(input)
	if err != nil {
		return nil, err
	}
	adminBlock := matasano.Block(ct, blockSize, align.BlockIndex)
	if adminBlock == nil {
		return nil, fmt.Errorf("%w: no admin block", ErrInvalidCiphertext)
	}

	headLen := align.PrefixLen(blockSize) + suffixLen - len(roleValue)
	emailLen := (blockSize - headLen%blockSize) % blockSize
	ct, err = o.Encrypt(matasano.Filler(fillerByte, emailLen))
	if err != nil {
		return nil, err
	}

	cut := headLen + emailLen
	if cut > len(ct) {
		return nil, fmt.Errorf("%w: profile ciphertext too short", ErrInvalidCiphertext)
	}
	forged := make([]byte, 0, cut+blockSize)
	forged = append(forged, ct[:cut]...)
	return append(forged, adminBlock...), nil
}
