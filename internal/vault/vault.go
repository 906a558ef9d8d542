// Package vault encrypts linked-account secrets with AES-GCM under a key
// derived from VAULT_SECRET with argon2id.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/JMURv/session-keeper/internal/config"
	"golang.org/x/crypto/argon2"
)

//go:generate mockgen -source=vault.go -destination=../../tests/mocks/mock_vault.go -package=mocks -mock_names=Port=MockVault

var ErrDecrypt = errors.New("failed to decrypt secret")

type Port interface {
	Encrypt(plain string) (string, error)
	Decrypt(encoded string) (string, error)
}

type Vault struct {
	aead cipher.AEAD
}

func New(conf config.Config) (*Vault, error) {
	key := argon2.IDKey([]byte(conf.Vault.Secret), []byte(conf.Vault.Salt), 1, 64*1024, 4, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Vault{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext).
func (v *Vault) Encrypt(plain string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (v *Vault) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}

	size := v.aead.NonceSize()
	if len(raw) < size {
		return "", ErrDecrypt
	}

	plain, err := v.aead.Open(nil, raw[:size], raw[size:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
