package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyHex = "2e009856520e10917accae78097a2e13d9dd7a97d3a5ea293527ec9d0132bba3"
	testIVHex  = "e8c7e042d6ba9fb85c128d5ceb64b82f"
)

// encryptCBC pads and encrypts; the test-side inverse of DecryptCBC.
func encryptCBC(t *testing.T, plaintext []byte, params Params) []byte {
	t.Helper()

	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := make([]byte, len(plaintext), len(plaintext)+padLen)
	copy(padded, plaintext)
	for p := 0; p < padLen; p++ {
		padded = append(padded, byte(padLen))
	}

	block, err := aes.NewCipher(params.Key)
	require.NoError(t, err)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, params.IV).CryptBlocks(ciphertext, padded)

	return ciphertext
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams(testKeyHex, testIVHex)
	require.NoError(t, err)
	assert.Len(t, params.Key, 32)
	assert.Len(t, params.IV, 16)

	_, err = ParseParams("zz009856", testIVHex)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseParams("2e0098", testIVHex)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseParams(testKeyHex, "e8c7e042")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecryptCBC_Fixture(t *testing.T) {
	params, err := ParseParams(testKeyHex, testIVHex)
	require.NoError(t, err)

	ciphertext, err := os.ReadFile(filepath.Join("testdata", "page.enc"))
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join("testdata", "page.bin"))
	require.NoError(t, err)

	got, err := DecryptCBC(ciphertext, params)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	// fixture plaintext is a jpeg payload
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, got[:3])
}

func TestDecryptCBC_Deterministic(t *testing.T) {
	params, err := ParseParams(testKeyHex, testIVHex)
	require.NoError(t, err)

	ciphertext, err := os.ReadFile(filepath.Join("testdata", "page.enc"))
	require.NoError(t, err)

	first, err := DecryptCBC(ciphertext, params)
	require.NoError(t, err)

	second, err := DecryptCBC(ciphertext, params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecryptCBC_RoundTrip(t *testing.T) {
	params, err := ParseParams(testKeyHex, testIVHex)
	require.NoError(t, err)

	plaintext := []byte("not quite a block multiple of content")
	ciphertext := encryptCBC(t, plaintext, params)

	got, err := DecryptCBC(ciphertext, params)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptCBC_AES128(t *testing.T) {
	params, err := ParseParams("000102030405060708090a0b0c0d0e0f", testIVHex)
	require.NoError(t, err)

	plaintext := []byte("sixteen byte key")
	ciphertext := encryptCBC(t, plaintext, params)

	got, err := DecryptCBC(ciphertext, params)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptCBC_InvalidInput(t *testing.T) {
	params, err := ParseParams(testKeyHex, testIVHex)
	require.NoError(t, err)

	_, err = DecryptCBC(nil, params)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecryptCBC(make([]byte, 17), params)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecryptCBC(make([]byte, 32), Params{Key: []byte("short"), IV: params.IV})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecryptCBC(make([]byte, 32), Params{Key: params.Key, IV: []byte("short")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecryptCBC_WrongIV(t *testing.T) {
	params, err := ParseParams(testKeyHex, testIVHex)
	require.NoError(t, err)

	// single block, one byte of padding
	plaintext := []byte("fifteen bytes!!")
	require.Len(t, plaintext, 15)
	ciphertext := encryptCBC(t, plaintext, params)
	require.Len(t, ciphertext, aes.BlockSize)

	// flipping iv bits flips the same plaintext bits in the first
	// block, turning the 0x01 pad byte into an impossible pad length
	wrongIV := make([]byte, len(params.IV))
	copy(wrongIV, params.IV)
	wrongIV[len(wrongIV)-1] ^= 0xff

	_, err = DecryptCBC(ciphertext, Params{Key: params.Key, IV: wrongIV})
	assert.ErrorIs(t, err, ErrPaddingInvalid)
}

func TestDecryptCBC_InconsistentPadding(t *testing.T) {
	params, err := ParseParams(testKeyHex, testIVHex)
	require.NoError(t, err)

	// encrypt a raw block whose trailing bytes claim a 3-byte pad but
	// disagree with each other
	forged := []byte{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		0x02, 0x02, 0x03,
	}
	require.Len(t, forged, aes.BlockSize)

	block, err := aes.NewCipher(params.Key)
	require.NoError(t, err)

	ciphertext := make([]byte, len(forged))
	cipher.NewCBCEncrypter(block, params.IV).CryptBlocks(ciphertext, forged)

	_, err = DecryptCBC(ciphertext, params)
	assert.ErrorIs(t, err, ErrPaddingInvalid)
}
