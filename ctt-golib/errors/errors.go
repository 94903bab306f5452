// Package errors wraps github.com/pkg/errors with the helpers used across
// ctt: sentinel errors annotated with context, and error lists.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errorf is fmt.Errorf. Errors created with it carry no stack.
var Errorf = fmt.Errorf

// New is Errorf, typically used for package-level sentinels.
var New = Errorf

// Cause is re-exported from github.com/pkg/errors
var Cause = errors.Cause

// Wrapf prefixes err with a formatted message while keeping err reachable via
// Cause. A nil err yields a new error from the message alone.
func Wrapf(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if err == nil {
		return errors.New(msg)
	}
	return errors.WithMessage(err, msg)
}

// Is reports whether err or its cause is target.
func Is(err, target error) bool {
	if err == target {
		return true
	}
	if err == nil || target == nil {
		return false
	}
	return Cause(err) == target
}
