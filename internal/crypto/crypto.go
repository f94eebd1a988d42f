// Package crypto implements the page decryption used by platforms that
// serve AES-CBC encrypted image bytes.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks key/iv/ciphertext shape violations. The
	// input is server-controlled, so shape checks must fail gracefully.
	ErrInvalidInput = errors.New("crypto: invalid input")
	// ErrPaddingInvalid marks a ciphertext that decrypted to malformed
	// PKCS#7 padding, e.g. a corrupted final block or a wrong iv.
	ErrPaddingInvalid = errors.New("crypto: invalid padding")
)

// Params holds decryption parameters decoded from their hex wire form.
type Params struct {
	Key []byte
	IV  []byte
}

// ParseParams decodes and validates hex key/iv material once, before
// any network call depends on it. The key must be an AES key size and
// the iv must match the AES block size.
func ParseParams(keyHex, ivHex string) (Params, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return Params{}, fmt.Errorf("%w: decoding key: %v", ErrInvalidInput, err)
	}
	if len(key) != 16 && len(key) != 32 {
		return Params{}, fmt.Errorf("%w: key must be 16 or 32 bytes, got %d", ErrInvalidInput, len(key))
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return Params{}, fmt.Errorf("%w: decoding iv: %v", ErrInvalidInput, err)
	}
	if len(iv) != aes.BlockSize {
		return Params{}, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidInput, aes.BlockSize, len(iv))
	}

	return Params{Key: key, IV: iv}, nil
}

// DecryptCBC decrypts a full AES-CBC ciphertext and strips its PKCS#7
// padding. Page images are small enough to decrypt as one unit.
func DecryptCBC(ciphertext []byte, params Params) ([]byte, error) {
	if len(params.Key) != 16 && len(params.Key) != 32 {
		return nil, fmt.Errorf("%w: key must be 16 or 32 bytes, got %d", ErrInvalidInput, len(params.Key))
	}
	if len(params.IV) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidInput, aes.BlockSize, len(params.IV))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a nonzero multiple of %d", ErrInvalidInput, len(ciphertext), aes.BlockSize)
	}

	block, err := aes.NewCipher(params.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, params.IV).CryptBlocks(plaintext, ciphertext)

	return unpad(plaintext)
}

// unpad validates and removes PKCS#7 padding.
func unpad(data []byte) ([]byte, error) {
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: pad length %d", ErrPaddingInvalid, padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: inconsistent pad bytes", ErrPaddingInvalid)
		}
	}
	return data[:len(data)-padLen], nil
}
