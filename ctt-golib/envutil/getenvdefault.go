// Package envutil reads settings from the environment.
package envutil

import (
	"os"
	"strconv"

	"github.com/kiteco/ctt/ctt-golib/errors"
)

// GetenvDefault returns the value of name, or defaultValue if it is unset.
func GetenvDefault(name, defaultValue string) string {
	if val, found := os.LookupEnv(name); found {
		return val
	}
	return defaultValue
}

// GetenvInt returns name parsed as an int, or defaultValue if it is unset or
// empty.
func GetenvInt(name string, defaultValue int) (int, error) {
	val := os.Getenv(name)
	if val == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue, errors.Wrapf(err, "environment variable %s should be an integer", name)
	}
	return n, nil
}
