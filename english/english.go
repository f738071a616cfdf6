// Package english scores byte strings by how much they look like English
// text. Lower scores are more plausible.
package english

import (
	"math"
	"sort"
	"sync"

	"github.com/nealharris/matasano"
)

// MaxScore is returned for anything that cannot be English text: bytes
// outside ASCII or control characters other than newline.
const MaxScore = math.MaxUint32

type class int

const (
	letter class = iota
	whitespace
	misc
)

// copied from https://en.wikipedia.org/wiki/Letter_frequency, with space and
// punctuation folded into two extra buckets
var letterFreqs = map[byte]float64{
	'a': 0.0609,
	'b': 0.0105,
	'c': 0.0284,
	'd': 0.0292,
	'e': 0.1136,
	'f': 0.0179,
	'g': 0.0138,
	'h': 0.0341,
	'i': 0.0544,
	'j': 0.0024,
	'k': 0.0041,
	'l': 0.0292,
	'm': 0.0276,
	'n': 0.0544,
	'o': 0.0600,
	'p': 0.0195,
	'q': 0.0024,
	'r': 0.0495,
	's': 0.0568,
	't': 0.0803,
	'u': 0.0243,
	'v': 0.0097,
	'w': 0.0138,
	'x': 0.0024,
	'y': 0.0130,
	'z': 0.0003,
}

const (
	whitespaceFreq = 0.1217
	miscFreq       = 0.0657
)

func classify(b byte) (class, byte) {
	switch {
	case b >= 'a' && b <= 'z':
		return letter, b
	case b >= 'A' && b <= 'Z':
		return letter, b + 'a' - 'A'
	case b == ' ' || b == '\t':
		return whitespace, 0
	}
	return misc, 0
}

func printable(b byte) bool {
	return b == '\n' || (b >= 0x20 && b < 0x7f)
}

// Score returns 1000 times the squared distance between the character
// frequencies of b and those of English. Case is ignored.
func Score(b []byte) uint32 {
	if len(b) == 0 {
		return 0
	}

	letters := make(map[byte]int)
	var spaces, others int
	for _, ch := range b {
		if !printable(ch) {
			return MaxScore
		}
		switch c, lower := classify(ch); c {
		case letter:
			letters[lower]++
		case whitespace:
			spaces++
		default:
			others++
		}
	}

	l := float64(len(b))
	score := 0.0
	for ch, count := range letters {
		score += math.Pow(letterFreqs[ch]-float64(count)/l, 2)
	}
	if spaces > 0 {
		score += math.Pow(whitespaceFreq-float64(spaces)/l, 2)
	}
	if others > 0 {
		score += math.Pow(miscFreq-float64(others)/l, 2)
	}

	return uint32(1000 * score)
}

var (
	rankOnce sync.Once
	ranked   []byte
)

// Ranked returns every byte value, most likely in English text first:
// lowercase letters by frequency, space, uppercase letters, then the rest in
// numeric order. The slice is shared; callers must not modify it.
func Ranked() []byte {
	rankOnce.Do(func() {
		lower := make([]byte, 0, len(letterFreqs))
		for ch := range letterFreqs {
			lower = append(lower, ch)
		}
		sort.Slice(lower, func(i, j int) bool {
			if letterFreqs[lower[i]] != letterFreqs[lower[j]] {
				return letterFreqs[lower[i]] > letterFreqs[lower[j]]
			}
			return lower[i] < lower[j]
		})

		order := append([]byte{}, lower...)
		order = append(order, ' ')
		for _, ch := range lower {
			order = append(order, ch-('a'-'A'))
		}

		var seen [256]bool
		for _, ch := range order {
			seen[ch] = true
		}
		for i := 0; i < 256; i++ {
			if !seen[i] {
				order = append(order, byte(i))
			}
		}
		ranked = order
	})
	return ranked
}

// FindSingleByteXor returns the key byte that, xored against ct, produces
// the most English-looking plaintext, along with that plaintext's score.
func FindSingleByteXor(ct []byte) (byte, uint32) {
	var best byte
	bestScore := uint32(MaxScore)
	found := false

	pt := make([]byte, len(ct))
	for k := 0; k < 256; k++ {
		for i := range ct {
			pt[i] = ct[i] ^ byte(k)
		}
		if s := Score(pt); !found || s < bestScore {
			best, bestScore, found = byte(k), s, true
		}
	}

	return best, bestScore
}

// BreakRepeatingKeyXor recovers a keySize-byte repeating xor key by solving
// each key position as an independent single-byte xor.
func BreakRepeatingKeyXor(ct []byte, keySize int) []byte {
	key := make([]byte, keySize)
	column := make([]byte, 0, len(ct)/keySize+1)
	for k := 0; k < keySize; k++ {
		column = column[:0]
		for i := k; i < len(ct); i += keySize {
			column = append(column, ct[i])
		}
		key[k], _ = FindSingleByteXor(column)
	}
	return key
}

// DecryptRepeatingKeyXor is BreakRepeatingKeyXor followed by the decryption.
func DecryptRepeatingKeyXor(ct []byte, keySize int) ([]byte, []byte) {
	key := BreakRepeatingKeyXor(ct, keySize)
	return matasano.RepeatingKeyXor(key, ct), key
}
