package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+"

	// MinGeneratedLength is the floor for generated temporary passwords.
	// Anything shorter can't hold one character from every class
	MinGeneratedLength = 8
)

// GenerateSecurePassword builds a random password of the given length that
// contains at least one lowercase letter, one uppercase letter and one digit,
// plus one symbol when includeSymbols is set. Used for admin-created accounts
// and admin-initiated password resets
func GenerateSecurePassword(length int, includeSymbols bool) (string, error) {
	if length < MinGeneratedLength {
		return "", errors.New("requested password length is too short")
	}

	classes := []string{lowerChars, upperChars, digitChars}
	if includeSymbols {
		classes = append(classes, symbolChars)
	}

	var pool string
	for _, c := range classes {
		pool += c
	}

	buf := make([]byte, length)

	// One guaranteed pick per class, the rest from the full pool
	for i := range buf {
		set := pool
		if i < len(classes) {
			set = classes[i]
		}

		ch, err := randByte(set)
		if err != nil {
			return "", err
		}
		buf[i] = ch
	}

	if err := shuffle(buf); err != nil {
		return "", err
	}

	return string(buf), nil
}

func randByte(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}

	return set[n.Int64()], nil
}

func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}

		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}

	return nil
}
