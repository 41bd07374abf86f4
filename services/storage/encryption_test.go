package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptFileRoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "document.pdf")
	plaintext := []byte("scanned national ID contents")
	require.NoError(t, os.WriteFile(src, plaintext, 0o644))

	encPath, err := encryptFile(src, "admin-key")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(encPath) })

	ciphertext, err := os.ReadFile(encPath)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	keyHash := sha256.Sum256([]byte("admin-key"))
	block, err := aes.NewCipher(keyHash[:])
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	require.Greater(t, len(ciphertext), gcm.NonceSize())
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	decrypted, err := gcm.Open(nil, nonce, sealed, nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptFileWrongKey(t *testing.T) {
	src := filepath.Join(t.TempDir(), "document.pdf")
	require.NoError(t, os.WriteFile(src, []byte("secret"), 0o644))

	encPath, err := encryptFile(src, "admin-key")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(encPath) })

	ciphertext, err := os.ReadFile(encPath)
	require.NoError(t, err)

	keyHash := sha256.Sum256([]byte("other-key"))
	block, err := aes.NewCipher(keyHash[:])
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	_, err = gcm.Open(nil, nonce, sealed, nil)
	assert.Error(t, err)
}
