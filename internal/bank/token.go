package bank

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// TokenCipher encrypts and decrypts bank access tokens for storage.
// Tokens never hit the database in the clear.
type TokenCipher struct {
	key *fernet.Key
}

// NewTokenCipher creates a TokenCipher from a base64-encoded fernet key.
// An empty key generates an ephemeral one, so unconfigured instances still
// start; stored tokens then do not survive a restart.
func NewTokenCipher(encodedKey string) (*TokenCipher, error) {
	if encodedKey == "" {
		var key fernet.Key
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate token key: %w", err)
		}
		return &TokenCipher{key: &key}, nil
	}

	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token key: %w", err)
	}
	return &TokenCipher{key: key}, nil
}

// Encrypt seals a plaintext access token for storage.
func (c *TokenCipher) Encrypt(token string) (string, error) {
	sealed, err := fernet.EncryptAndSign([]byte(token), c.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt access token: %w", err)
	}
	return string(sealed), nil
}

// Decrypt opens a stored access token. A zero TTL disables expiry: stored
// tokens stay valid until the bank revokes them.
func (c *TokenCipher) Decrypt(sealed string) (string, error) {
	token := fernet.VerifyAndDecrypt([]byte(sealed), 0, []*fernet.Key{c.key})
	if token == nil {
		return "", fmt.Errorf("failed to decrypt access token")
	}
	return string(token), nil
}
