package namefile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is returned when a Record fails construction-time
	// validation: empty stem, empty tag, bad suffix, or malformed version.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrUnparseableName is returned when a name does not segment into a
	// stem/tags head followed by date, version and suffix segments.
	ErrUnparseableName = errors.New("unparseable name")

	// ErrInvalidDate is returned when a date-shaped segment is not a real
	// calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidVersion is returned when a version-shaped run does not parse
	// under the version grammar.
	ErrInvalidVersion = errors.New("invalid version")
)

// newErr joins the sentinel err with a formatted detail so that callers can
// match the sentinel with errors.Is and still see the detail.
func newErr(err error, format string, args ...any) error {
	return errors.Join(err, fmt.Errorf(format, args...))
}

// Error kinds reported by ErrorKind.
const (
	KindUnparseableName = "unparseable_name"
	KindInvalidDate     = "invalid_date"
	KindInvalidVersion  = "invalid_version"
	KindInvalidRecord   = "invalid_record"
)

// ErrorKind returns a stable identifier for the most specific codec sentinel
// in err's tree, or "" if err carries none.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidDate):
		return KindInvalidDate
	case errors.Is(err, ErrInvalidVersion):
		return KindInvalidVersion
	case errors.Is(err, ErrUnparseableName):
		return KindUnparseableName
	case errors.Is(err, ErrInvalidRecord):
		return KindInvalidRecord
	}
	return ""
}
