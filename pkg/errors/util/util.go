package util

import "fmt"

// Err combines a sentinel error with the lower-level error that caused it.
// Either argument may be nil.
func Err(err error, causedBy error) error {
	switch {
	case err == nil && causedBy == nil:
		return fmt.Errorf("")
	case causedBy == nil:
		return fmt.Errorf("%v", err)
	case err == nil:
		return fmt.Errorf("%v", causedBy)
	default:
		return fmt.Errorf("%v: %v", err, causedBy)
	}
}
