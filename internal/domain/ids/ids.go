package ids

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidULID     = errors.New("invalid ULID")
	ErrInvalidRecordID = errors.New("invalid record id")
)

// NewULID generates a new ULID string. Batch runs are identified by ULIDs so
// their ids sort by start time.
func NewULID() (string, error) {
	return newULIDAt(time.Now())
}

func newULIDAt(at time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(at), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsULID returns true when value is a valid ULID (case-insensitive Crockford Base32).
func IsULID(value string) bool {
	return ulidRegex.MatchString(strings.TrimSpace(value))
}

// ValidateULID validates a ULID string.
func ValidateULID(value string) error {
	if !IsULID(value) {
		return ErrInvalidULID
	}
	return nil
}

// ULIDTime returns the timestamp embedded in a ULID.
func ULIDTime(value string) (time.Time, error) {
	id, err := ulid.ParseStrict(strings.ToUpper(strings.TrimSpace(value)))
	if err != nil {
		return time.Time{}, ErrInvalidULID
	}
	return ulid.Time(id.Time()), nil
}

// NewRecordID returns a random id used to key one record's outcome in a
// batch report.
func NewRecordID() string {
	return uuid.NewString()
}

// ValidateRecordID checks that value is a canonical UUID.
func ValidateRecordID(value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return ErrInvalidRecordID
	}
	return nil
}
