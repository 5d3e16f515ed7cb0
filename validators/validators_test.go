package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	cases := []struct {
		name  string
		email string
		want  error
	}{
		{"valid", "jane@example.com", nil},
		{"valid with plus tag", "jane+tag@example.com", nil},
		{"empty", "", ErrEmailEmpty},
		{"no at sign", "janeexample.com", ErrEmailInvalid},
		{"display name form", "Jane <jane@example.com>", ErrEmailInvalid},
		{"spaces", "jane @example.com", ErrEmailInvalid},
		{"too long", strings.Repeat("a", 250) + "@x.io", ErrEmailTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, EmailValidator(tc.email), tc.want)
		})
	}
}

func TestPasswordValidator(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "Sup3rSecret", nil},
		{"valid with symbols", "Sup3r!Secret#", nil},
		{"empty", "", ErrPasswordEmpty},
		{"too short", "Ab1", ErrPasswordTooShort},
		{"no uppercase", "sup3rsecret", ErrPasswordTooWeak},
		{"no lowercase", "SUP3RSECRET", ErrPasswordTooWeak},
		{"no digit", "SuperSecret", ErrPasswordTooWeak},
		{"too long", "Ab1" + strings.Repeat("x", 255), ErrPasswordTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, PasswordValidator(tc.password), tc.want)
		})
	}
}

func TestNameValidator(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"valid", "Jane", nil},
		{"empty", "", ErrNameEmpty},
		{"blank", "   ", ErrNameEmpty},
		{"too long", strings.Repeat("a", 101), ErrNameTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, NameValidator(tc.input), tc.want)
		})
	}
}
