package attack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nealharris/matasano/oracle"
)

func TestOraclesRejectDirectAdmin(t *testing.T) {
	cbc := oracle.NewCbc()
	ct, err := cbc.Encrypt([]byte(oracle.AdminMarker))
	require.NoError(t, err)
	ok, err := cbc.Verify(ct)
	require.NoError(t, err)
	assert.False(t, ok)

	ctr := oracle.NewCtr()
	ct, err = ctr.Encrypt([]byte(oracle.AdminMarker))
	require.NoError(t, err)
	ok, err = ctr.Verify(ct)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFirstDifference(t *testing.T) {
	offset, err := firstDifference(oracle.NewCtr())
	require.NoError(t, err)
	assert.Equal(t, len("comment1=cooking%20MCs;userdata="), offset)

	offset, err = firstDifference(oracle.NewCbc())
	require.NoError(t, err)
	assert.Equal(t, 32, offset)
}

func TestForgeAdminCbc(t *testing.T) {
	for i := 0; i < 20; i++ {
		o := oracle.NewCbc()
		ct, err := ForgeAdminCbc(o)
		require.NoError(t, err)

		ok, err := o.Verify(ct)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestForgeAdminCtr(t *testing.T) {
	for i := 0; i < 20; i++ {
		o := oracle.NewCtr()
		ct, err := ForgeAdminCtr(o)
		require.NoError(t, err)

		ok, err := o.Verify(ct)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestForgeAdminCtrWithoutDifference(t *testing.T) {
	_, err := ForgeAdminCtr(constantOracle{})
	assert.ErrorIs(t, err, ErrTargetNotFound)

	_, err = ForgeAdminCbc(constantOracle{})
	assert.Error(t, err)
}

// constantOracle ignores its input.
type constantOracle struct{}

func (constantOracle) Encrypt([]byte) ([]byte, error) {
	return make([]byte, 64), nil
}
