package native

import (
	"strings"

	"github.com/aptpod/wsproto-go/errors"
)

const subprotocolSeparators = "()<>@,;:\\\"/[]?={} "

// ValidateSubprotocolは、サブプロトコル名がHTTPのトークンとして有効かどうかを検証します。
func ValidateSubprotocol(name string) error {
	if name == "" {
		return errors.Errorf("empty subprotocol: %w", errors.ErrInvalidSubprotocol)
	}
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b < '!' || b > '~' || strings.IndexByte(subprotocolSeparators, b) >= 0 {
			return errors.Errorf("invalid character %q in subprotocol %q: %w", b, name, errors.ErrInvalidSubprotocol)
		}
	}
	return nil
}

func validateSubprotocols(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if err := ValidateSubprotocol(name); err != nil {
			return err
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return errors.Errorf("duplicate subprotocol %q: %w", name, errors.ErrInvalidSubprotocol)
		}
		seen[key] = struct{}{}
	}
	return nil
}
