package attack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/oracle"
)

func TestBreakCtrEdit(t *testing.T) {
	for _, pt := range [][]byte{rollin(), matasano.RandomBytes(1), matasano.RandomBytes(100)} {
		o, err := oracle.NewCtrEdit(pt)
		require.NoError(t, err)

		got, err := BreakCtrEdit(o, o.Ciphertext())
		require.NoError(t, err)
		assert.True(t, o.Verify(got))
	}
}

func TestCtrEditRange(t *testing.T) {
	o, err := oracle.NewCtrEdit([]byte("YELLOW SUBMARINE"))
	require.NoError(t, err)
	ct := o.Ciphertext()

	_, err = o.Edit(ct, 10, make([]byte, 7))
	assert.ErrorIs(t, err, oracle.ErrEditOutOfRange)
	_, err = o.Edit(ct, -1, nil)
	assert.ErrorIs(t, err, oracle.ErrEditOutOfRange)

	edited, err := o.Edit(ct, 7, []byte("SANDWICH"))
	require.NoError(t, err)
	got, err := BreakCtrEdit(o, edited)
	require.NoError(t, err)
	assert.Equal(t, "YELLOW SANDWICHE", string(got))
}

func TestRecoverKeyAsIV(t *testing.T) {
	for i := 0; i < 20; i++ {
		o := oracle.NewCbcKeyAsIV()
		key, err := RecoverKeyAsIV(o)
		require.NoError(t, err)
		assert.True(t, o.VerifyKey(key))
	}
}

func TestKeyAsIVAcceptsAscii(t *testing.T) {
	o := oracle.NewCbcKeyAsIV()
	ct, err := o.Encrypt([]byte("plain text"))
	require.NoError(t, err)
	assert.NoError(t, o.Decrypt(ct))
}
