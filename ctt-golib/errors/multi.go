package errors

import "strings"

// List collects the errors of independent operations, such as the jobs of a
// worker pool.
type List []error

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// ErrorOrNil returns nil for an empty list and the sole error of a list of
// one.
func (l List) ErrorOrNil() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	}
	return l
}

// Append adds err to a copy of l, flattening nested lists. A nil err is
// skipped.
func Append(l List, err error) List {
	out := append(List(nil), l...)
	switch e := err.(type) {
	case nil:
		return out
	case List:
		return append(out, e...)
	}
	return append(out, err)
}

// Combine returns both errors as one, or whichever is non-nil.
func Combine(e, f error) error {
	return Append(Append(nil, e), f).ErrorOrNil()
}

// Defer runs f and folds its error into *err, for deferred Close calls:
//
//	defer errors.Defer(&err, f.Close)
func Defer(err *error, f func() error) {
	*err = Combine(*err, f())
}
