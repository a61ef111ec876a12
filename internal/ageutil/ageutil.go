// Package ageutil wraps filippo.io/age for the secrets a playbook writes to
// disk. Ciphertext lives next to the playbook as "<name>.age"; plaintext only
// ever exists at its destination.
package ageutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
)

// Environment variables that override a playbook's age settings.
const (
	EnvIdentity   = "PASS_AGE_IDENTITY"
	EnvPassphrase = "PASS_AGE_PASSPHRASE"
)

// ErrNoKey is returned when neither an identity file nor a passphrase is set.
var ErrNoKey = errors.New("no age key configured; set age.identity or age.passphrase, or " + EnvIdentity)

// Key holds the credential used to encrypt and decrypt secrets.
// Passphrase wins when both fields are set.
type Key struct {
	IdentityFile string
	Passphrase   string
}

// FromEnv returns k with PASS_AGE_IDENTITY and PASS_AGE_PASSPHRASE applied
// on top. It returns nil when no credential is available at all.
func FromEnv(k *Key) *Key {
	out := Key{}
	if k != nil {
		out = *k
	}
	if v := os.Getenv(EnvIdentity); v != "" {
		out.IdentityFile = v
	}
	if v := os.Getenv(EnvPassphrase); v != "" {
		out.Passphrase = v
	}
	if out.IdentityFile == "" && out.Passphrase == "" {
		return nil
	}
	return &out
}

// Encrypt returns plaintext sealed for k in age's binary format.
func (k *Key) Encrypt(plaintext []byte) ([]byte, error) {
	recipients, err := k.recipients()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipients...)
	if err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("write ciphertext: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalise ciphertext: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt opens ciphertext produced by Encrypt.
func (k *Key) Decrypt(ciphertext []byte) ([]byte, error) {
	identities, err := k.identities()
	if err != nil {
		return nil, err
	}
	r, err := age.Decrypt(bytes.NewReader(ciphertext), identities...)
	if err != nil {
		return nil, fmt.Errorf("age decrypt: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plaintext: %w", err)
	}
	return plaintext, nil
}

// EncryptFile encrypts src and writes the ciphertext to dst with mode 0600.
func (k *Key) EncryptFile(src, dst string) error {
	plaintext, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read plaintext: %w", err)
	}
	ciphertext, err := k.Encrypt(plaintext)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, ciphertext, 0o600)
}

// DecryptFile reads the ciphertext at src and returns the plaintext.
func (k *Key) DecryptFile(src string) ([]byte, error) {
	ciphertext, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read ciphertext: %w", err)
	}
	return k.Decrypt(ciphertext)
}

func (k *Key) recipients() ([]age.Recipient, error) {
	if k.Passphrase != "" {
		r, err := age.NewScryptRecipient(k.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("create scrypt recipient: %w", err)
		}
		return []age.Recipient{r}, nil
	}

	identities, err := k.parseIdentityFile()
	if err != nil {
		return nil, err
	}
	var recipients []age.Recipient
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			recipients = append(recipients, x.Recipient())
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no X25519 identities found in %s", k.IdentityFile)
	}
	return recipients, nil
}

func (k *Key) identities() ([]age.Identity, error) {
	if k.Passphrase != "" {
		id, err := age.NewScryptIdentity(k.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("create scrypt identity: %w", err)
		}
		return []age.Identity{id}, nil
	}
	return k.parseIdentityFile()
}

func (k *Key) parseIdentityFile() ([]age.Identity, error) {
	if k.IdentityFile == "" {
		return nil, ErrNoKey
	}
	f, err := os.Open(k.IdentityFile)
	if err != nil {
		return nil, fmt.Errorf("open identity file: %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parse identities: %w", err)
	}
	return identities, nil
}

// CiphertextPath returns the path of the encrypted copy of src, appending
// ".age" unless it is already there.
func CiphertextPath(src string) string {
	if strings.HasSuffix(src, ".age") {
		return src
	}
	return src + ".age"
}
