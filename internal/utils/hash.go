package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only reads the first 72 bytes of its input and refresh tokens are
// longer, so tokens are reduced to a hex SHA-256 digest before hashing.
func digest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}

// HashToken returns a bcrypt hash of a refresh token for storage.
func HashToken(token string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(digest(token), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckToken compares a stored hash with a presented token.
func CheckToken(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(token)) == nil
}
