package format

import (
	"errors"
	"fmt"
	"strings"
)

// ValueError reports an enumerated property given a value outside its
// allowed set.
type ValueError struct {
	Family   string
	Property string
	Value    any
	Allowed  []string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid %s value %q for %s property; must be one of: %s",
		e.Property, fmt.Sprint(e.Value), e.Family, strings.Join(e.Allowed, ","))
}

// IsValueError checks if an error is a ValueError
func IsValueError(err error) bool {
	var ve *ValueError
	return errors.As(err, &ve)
}
