package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// HashPasscode generates a salted Argon2id digest in salt$hash form,
// suitable for the ADMIN_PASSCODE configuration value.
func HashPasscode(passcode string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(passcode), salt, 1, 64*1024, 4, 32)

	return base64.StdEncoding.EncodeToString(salt) + "$" + base64.StdEncoding.EncodeToString(hash), nil
}

// VerifyPasscode compares a passcode with a salt$hash digest.
func VerifyPasscode(passcode, digest string) (bool, error) {
	encodedSalt, encodedHash, ok := strings.Cut(digest, "$")
	if !ok {
		return false, fmt.Errorf("malformed passcode digest")
	}

	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	hash, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	comparison := argon2.IDKey([]byte(passcode), salt, 1, 64*1024, 4, 32)

	return subtle.ConstantTimeCompare(hash, comparison) == 1, nil
}
