package validators

import (
	"errors"
	"strings"
)

var (
	ErrNameEmpty   = errors.New("name can't be empty")
	ErrNameTooLong = errors.New("name is too long")
)

func NameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return ErrNameEmpty
	}

	if len(n) > 100 {
		return ErrNameTooLong
	}

	return nil
}
