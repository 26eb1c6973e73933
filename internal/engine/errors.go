package engine

import "errors"

var (
	ErrMalformedRow    = errors.New("malformed row")
	ErrDuplicateRow    = errors.New("duplicate country/date row")
	ErrCountryNotFound = errors.New("country not found")
	ErrDateNotFound    = errors.New("date not found")
	ErrFieldNotFound   = errors.New("field not found")
	ErrNotNumeric      = errors.New("value is not numeric")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRange    = errors.New("start date is after end date")
)

// IsNotFound reports whether err is any key-not-found lookup failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCountryNotFound) ||
		errors.Is(err, ErrDateNotFound) ||
		errors.Is(err, ErrFieldNotFound)
}
