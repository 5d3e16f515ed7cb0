// Package util contains small helpers used across the application that don't
// belong to any other package
package util

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandStr returns a pseudo-random alphanumeric string of length n. Only used
// for non-secret values like request IDs
func RandStr(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[mrand.Intn(len(alphabet))]
	}

	return string(b)
}

// GenerateToken returns a hex-encoded token built from n cryptographically
// random bytes
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
