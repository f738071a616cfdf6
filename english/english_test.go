package english

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nealharris/matasano"
)

func TestScoreRejectsNonText(t *testing.T) {
	assert.Equal(t, uint32(MaxScore), Score([]byte("hello\x00world")))
	assert.Equal(t, uint32(MaxScore), Score([]byte("caf\xc3\xa9")))
	assert.Equal(t, uint32(MaxScore), Score([]byte{0x7f}))
	assert.Less(t, Score([]byte("two\nlines")), uint32(MaxScore))
}

func TestScorePrefersEnglish(t *testing.T) {
	english := Score([]byte("Now that the party is jumping"))
	noise := Score([]byte("Qz#x!vj*k^}|~q@zx{kq%j"))
	assert.Less(t, english, noise)
	assert.Equal(t, Score([]byte("hello there")), Score([]byte("HELLO THERE")))
}

func TestRanked(t *testing.T) {
	order := Ranked()
	require.Len(t, order, 256)

	var seen [256]bool
	for _, b := range order {
		assert.False(t, seen[b], "byte %d listed twice", b)
		seen[b] = true
	}

	assert.Equal(t, byte('e'), order[0])
	assert.Equal(t, byte('t'), order[1])
	assert.Equal(t, byte(' '), order[26])
	assert.Equal(t, byte('E'), order[27])
	assert.Equal(t, byte(0), order[53])
	assert.Equal(t, order, Ranked(), "ranking is stable across calls")
}

func TestFindSingleByteXor(t *testing.T) {
	ct, _ := hex.DecodeString("1b37373331363f78151b7f2b783431333d78397828372d363c78373e783a393b3736")

	key, score := FindSingleByteXor(ct)
	assert.Equal(t, byte('X'), key)
	assert.Less(t, score, uint32(MaxScore))

	pt := matasano.RepeatingKeyXor([]byte{key}, ct)
	assert.Equal(t, "Cooking MC's like a pound of bacon", string(pt))
}

func TestBreakRepeatingKeyXor(t *testing.T) {
	pt := []byte("I'm back and I'm ringin' the bell\n" +
		"A rockin' on the mike while the fly girls yell\n" +
		"In ecstasy in the back of me\n" +
		"Well that's my DJ Deshay cuttin' all them Z's\n" +
		"Hittin' hard and the girlies goin' crazy\n" +
		"Vanilla's on the mike, man I'm not lazy.\n")
	key := []byte("ICE")
	ct := matasano.RepeatingKeyXor(key, pt)

	recovered, gotKey := DecryptRepeatingKeyXor(ct, len(key))
	assert.Equal(t, key, gotKey)
	assert.Equal(t, pt, recovered)
}
