// Package secrets keeps the token signing secret encrypted at rest with an
// age identity stored next to the data directory.
package secrets

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

const (
	encPrefix = "ENC[age:"
	encSuffix = "]"

	keyFile    = ".age-key"
	secretFile = "signing-secret"

	signingSecretBytes = 32
)

// GenerateIdentity creates an X25519 key pair and writes it to path with
// 0o600. Idempotent: an existing key file is left alone.
func GenerateIdentity(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generate age identity: %w", err)
	}

	content := fmt.Sprintf("# created by tasklistd\n# public key: %s\n%s\n",
		identity.Recipient().String(), identity.String())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write age key: %w", err)
	}
	return nil
}

// LoadIdentity reads an age private key from the given file.
func LoadIdentity(path string) (*age.X25519Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open age key: %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parse age identities: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in %s", path)
	}

	id, ok := identities[0].(*age.X25519Identity)
	if !ok {
		return nil, fmt.Errorf("unexpected identity type in %s", path)
	}
	return id, nil
}

// Encrypt encrypts plaintext for the recipient into an ENC[age:...] blob.
func Encrypt(plaintext []byte, recipient *age.X25519Recipient) (string, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return "", fmt.Errorf("age encrypt init: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return "", fmt.Errorf("age encrypt write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("age encrypt close: %w", err)
	}

	return encPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()) + encSuffix, nil
}

// Decrypt decrypts an ENC[age:...] blob.
func Decrypt(blob string, identity *age.X25519Identity) ([]byte, error) {
	if !strings.HasPrefix(blob, encPrefix) || !strings.HasSuffix(blob, encSuffix) {
		return nil, fmt.Errorf("not an encrypted blob")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(blob[len(encPrefix) : len(blob)-len(encSuffix)])
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("age decrypt: %w", err)
	}
	return io.ReadAll(r)
}

// LoadOrCreateSigningSecret returns the token signing secret stored under
// dir, creating both the age identity and a fresh random secret on first
// use. The secret only ever touches disk encrypted.
func LoadOrCreateSigningSecret(dir string) ([]byte, error) {
	keyPath := filepath.Join(dir, keyFile)
	if err := GenerateIdentity(keyPath); err != nil {
		return nil, err
	}
	identity, err := LoadIdentity(keyPath)
	if err != nil {
		return nil, err
	}

	secretPath := filepath.Join(dir, secretFile)
	blob, err := os.ReadFile(secretPath)
	if err == nil {
		return Decrypt(strings.TrimSpace(string(blob)), identity)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read signing secret: %w", err)
	}

	secret := make([]byte, signingSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate signing secret: %w", err)
	}

	encrypted, err := Encrypt(secret, identity.Recipient())
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(secretPath, []byte(encrypted+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write signing secret: %w", err)
	}
	return secret, nil
}
