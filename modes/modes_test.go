package modes

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	mathrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/pkcs7"
)

func TestEcbKnownAnswer(t *testing.T) {
	// FIPS-197 appendix C.1
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	pt, _ := hex.DecodeString("00112233445566778899aabbccddeeff")
	expected, _ := hex.DecodeString("69c4e0d86a7b0430d8cdb78070b4c55a")

	ct, err := EcbEncryptBlocks(key, pt)
	require.NoError(t, err)
	assert.Equal(t, expected, ct)

	back, err := EcbDecryptBlocks(key, ct)
	require.NoError(t, err)
	assert.Equal(t, pt, back)
}

func TestEcbBlocksRejectUnaligned(t *testing.T) {
	key := []byte("YELLOW SUBMARINE")
	_, err := EcbEncryptBlocks(key, []byte("short"))
	assert.ErrorIs(t, err, ErrNotBlockAligned)
	_, err = EcbDecryptBlocks(key, make([]byte, 17))
	assert.ErrorIs(t, err, ErrNotBlockAligned)

	_, err = EcbEncryptBlocks(key[:15], make([]byte, 16))
	assert.Error(t, err, "short keys are rejected by crypto/aes")
}

func TestEcbLeaksEqualBlocks(t *testing.T) {
	key := matasano.RandomKey()
	ct, err := EcbEncrypt(key, bytes.Repeat([]byte("YELLOW SUBMARINE"), 3))
	require.NoError(t, err)
	require.Len(t, ct, 64)
	assert.Equal(t, ct[0:16], ct[16:32])
	assert.Equal(t, ct[16:32], ct[32:48])
	assert.True(t, matasano.HasRepeatedBlock(ct, 16))
}

func TestEcbRoundTrip(t *testing.T) {
	for l := 0; l < 100; l++ {
		key := matasano.RandomKey()
		pt := matasano.RandomBytes(l)
		ct, err := EcbEncrypt(key, pt)
		require.NoError(t, err)
		assert.Len(t, ct, (l/16+1)*16)

		back, err := EcbDecrypt(key, ct)
		require.NoError(t, err)
		assert.Equal(t, pt, back)
	}
}

func TestEcbDecryptReportsBadPadding(t *testing.T) {
	key := matasano.RandomKey()
	ct, err := EcbEncryptBlocks(key, []byte("no padding here!"))
	require.NoError(t, err)

	_, err = EcbDecrypt(key, ct)
	assert.ErrorIs(t, err, pkcs7.ErrInvalidPadding)
}

func TestCbcMatchesStandardLibrary(t *testing.T) {
	for i := 0; i < 50; i++ {
		key := matasano.RandomKey()
		iv := matasano.RandomBytes(16)
		pt := matasano.RandomBytes(mathrand.Intn(100))

		ct, err := CbcEncryptor{key, iv}.CbcEncrypt(pt)
		require.NoError(t, err)

		block, _ := aes.NewCipher(key)
		expected := pkcs7.Pad(pt, 16)
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(expected, expected)
		assert.Equal(t, expected, ct)
	}
}

func TestCbcRoundTrip(t *testing.T) {
	key := []byte("YELLOW SUBMARINE")
	iv := make([]byte, 16)
	examples := [][]byte{
		{},
		[]byte("a"),
		[]byte("This is a test"),
		[]byte("This is a longer test"),
		[]byte("YELLOW SUBMARINE"),
	}
	for _, text := range examples {
		enc := CbcEncryptor{key, iv}
		ct, err := enc.CbcEncrypt(text)
		require.NoError(t, err)
		pt, err := enc.CbcDecrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, text, pt)
	}

	for i := 0; i < 100; i++ {
		enc := CbcEncryptor{matasano.RandomKey(), matasano.RandomBytes(16)}
		text := matasano.RandomBytes(mathrand.Intn(200))
		ct, err := enc.CbcEncrypt(text)
		require.NoError(t, err)
		pt, err := enc.CbcDecrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, text, pt)
	}
}

func TestCbcChainsThroughIV(t *testing.T) {
	key := matasano.RandomKey()
	pt := bytes.Repeat([]byte{'a'}, 48)

	ct1, err := CbcEncryptor{key, make([]byte, 16)}.CbcEncrypt(pt)
	require.NoError(t, err)
	ct2, err := CbcEncryptor{key, matasano.RandomBytes(16)}.CbcEncrypt(pt)
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2)
	assert.False(t, matasano.HasRepeatedBlock(ct1, 16))
}

func TestCbcErrors(t *testing.T) {
	key := []byte("YELLOW SUBMARINE")
	iv := make([]byte, 16)

	_, err := CbcEncryptor{key, iv[:15]}.CbcEncrypt([]byte("a"))
	assert.ErrorIs(t, err, ErrInvalidIV)

	_, err = CbcEncryptor{key, iv}.CbcDecrypt([]byte("a"))
	assert.ErrorIs(t, err, ErrNotBlockAligned)

	ct, err := CbcEncryptor{key, iv}.CbcEncrypt([]byte("a"))
	require.NoError(t, err)
	_, err = CbcEncryptor{key, iv[:15]}.CbcDecrypt(ct)
	assert.ErrorIs(t, err, ErrInvalidIV)

	// Flipping the low bit of the last IV byte turns the 0x0f padding into
	// 0x0e, which no longer matches the bytes before it.
	badIV := make([]byte, 16)
	badIV[15] ^= 1
	_, err = CbcEncryptor{key, badIV}.CbcDecrypt(ct)
	assert.ErrorIs(t, err, pkcs7.ErrInvalidPadding)

	raw, err := CbcEncryptor{key, badIV}.CbcDecryptRaw(ct)
	require.NoError(t, err)
	assert.Equal(t, byte(0x0e), raw[15])
}

func TestCtrKnownAnswer(t *testing.T) {
	ct, _ := base64.StdEncoding.DecodeString("L77na/nrFsKvynd6HzOoG7GHTLXsTVu9qvY/2syLXzhPweyyMTJULu/6/kXX0KSvoOLSFQ==")
	enc := CtrEncryptor{[]byte("YELLOW SUBMARINE"), 0}

	pt, err := enc.CtrDecrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "Yo, VIP Let's kick it Ice, Ice, baby Ice, Ice, baby ", string(pt))
}

func TestCtrRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		enc := CtrEncryptor{matasano.RandomKey(), mathrand.Uint64()}
		pt := matasano.RandomBytes(mathrand.Intn(100))

		ct, err := enc.CtrEncrypt(pt)
		require.NoError(t, err)
		assert.Len(t, ct, len(pt))

		back, err := enc.CtrDecrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, pt, back)
	}
}

func TestCtrKeystreamPrefix(t *testing.T) {
	enc := CtrEncryptor{matasano.RandomKey(), 7}
	short, err := enc.Keystream(5)
	require.NoError(t, err)
	long, err := enc.Keystream(40)
	require.NoError(t, err)
	assert.Equal(t, short, long[:5])

	ct, err := enc.CtrEncrypt(make([]byte, 40))
	require.NoError(t, err)
	assert.Equal(t, long, ct)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "ECB", ECB.String())
	assert.Equal(t, "CBC", CBC.String())
	assert.Equal(t, "CTR", CTR.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}
