package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for birth dates and day keys.
const DateLayout = "2006-01-02"

// ErrInvalidIdentity is returned when an Identity cannot drive report generation.
var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is the user's full name and birth date.
type Identity struct {
	FullName string `json:"fullName"`
	DOB      string `json:"dob"`
}

// Validate requires a non-empty name and a parseable birth date.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidIdentity)
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(id.DOB)); err != nil {
		return fmt.Errorf("%w: birth date %q is not YYYY-MM-DD", ErrInvalidIdentity, id.DOB)
	}
	return nil
}

// Normalized trims surrounding whitespace from both fields.
func (id Identity) Normalized() Identity {
	return Identity{
		FullName: strings.TrimSpace(id.FullName),
		DOB:      strings.TrimSpace(id.DOB),
	}
}

// DateKey formats t as a local-calendar YYYY-MM-DD key.
func DateKey(t time.Time) string {
	return t.Local().Format(DateLayout)
}
