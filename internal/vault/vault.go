// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package vault seals restoration records into a password-protected blob
// and opens them again. The blob is the only place original span text is
// ever written to disk.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	"github.com/SenryLee/LD-anonymization-tool/internal/masker"
	"github.com/SenryLee/LD-anonymization-tool/internal/security"
)

const (
	// blobVersion identifies the sealed format. Bump on incompatible
	// changes to the record payload or the crypto parameters.
	blobVersion = "2.0"

	saltLength    = 16
	nonceLength   = 12
	keyLength     = 32
	kdfIterations = 120000

	minPasswordLength = 6
)

var (
	// ErrInvalidPassword reports a password rejected before any
	// cryptography runs.
	ErrInvalidPassword = fmt.Errorf("password must be at least %d characters", minPasswordLength)

	// ErrAuthenticationFailed reports that a sealed blob could not be
	// opened. Wrong password and corrupted ciphertext are deliberately
	// indistinguishable.
	ErrAuthenticationFailed = errors.New("vault authentication failed: wrong password or corrupted data")
)

// Metadata describes the masking run that produced a blob. It is stored in
// the clear and must never contain original span text.
type Metadata struct {
	SourceFormat  string         `json:"source_format"`
	OriginalChars int            `json:"original_chars"`
	Keywords      int            `json:"keywords"`
	PatternStats  map[string]int `json:"pattern_stats,omitempty"`
}

// Blob is the on-disk vault document. Salt, Nonce and Data marshal as
// base64 strings under encoding/json.
type Blob struct {
	Version       string    `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	KDFIterations int       `json:"kdf_iterations"`
	Salt          []byte    `json:"salt"`
	Nonce         []byte    `json:"nonce"`
	Data          []byte    `json:"data"`
	Metadata      Metadata  `json:"metadata"`
}

// Seal encrypts the restoration records under a key derived from password.
// Every call draws a fresh salt and nonce, so sealing the same records
// twice never reuses a key/nonce pair.
func Seal(records []masker.Record, password *security.SecureString, meta Metadata) (*Blob, error) {
	if err := CheckPassword(password); err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding restoration records: %w", err)
	}
	defer security.Wipe(plaintext)

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	key := deriveKey(password, salt)
	defer security.Wipe(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	return &Blob{
		Version:       blobVersion,
		CreatedAt:     time.Now().UTC(),
		KDFIterations: kdfIterations,
		Salt:          salt,
		Nonce:         nonce,
		Data:          gcm.Seal(nil, nonce, plaintext, nil),
		Metadata:      meta,
	}, nil
}

// Open decrypts a blob and returns the restoration records. Any failure,
// from a wrong password to a flipped ciphertext bit, reports
// ErrAuthenticationFailed; callers must treat it as terminal rather than
// retry with variations.
func Open(blob *Blob, password *security.SecureString) ([]masker.Record, error) {
	if len(blob.Salt) != saltLength || len(blob.Nonce) != nonceLength {
		return nil, ErrAuthenticationFailed
	}

	// The stored iteration count is unauthenticated documentation; always
	// derive with the fixed count so a tampered blob cannot weaken the KDF.
	key := pbkdf2.Key(password.Bytes(), blob.Salt, kdfIterations, keyLength, sha256.New)
	defer security.Wipe(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	plaintext, err := gcm.Open(nil, blob.Nonce, blob.Data, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	defer security.Wipe(plaintext)

	var records []masker.Record
	if err := json.Unmarshal(plaintext, &records); err != nil {
		return nil, ErrAuthenticationFailed
	}
	return records, nil
}

// CheckPassword enforces the minimum password length before any key
// derivation work happens.
func CheckPassword(password *security.SecureString) error {
	if password == nil || utf8.RuneCount(password.Bytes()) < minPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

func deriveKey(password *security.SecureString, salt []byte) []byte {
	return pbkdf2.Key(password.Bytes(), salt, kdfIterations, keyLength, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("initializing GCM: %w", err)
	}
	return gcm, nil
}
