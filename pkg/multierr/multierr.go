package multierr

import (
	"bytes"
	"fmt"
)

// Error collects independent failures, such as the notice components whose version ranges could not be parsed.
type Error []error

func (e Error) Error() string {
	switch len(e) {
	case 0:
		return "<nil>"

	case 1:
		return e[0].Error()

	default:
		buf := new(bytes.Buffer)
		fmt.Fprintf(buf, "%d errors occurred:", len(e))
		for _, err := range e {
			fmt.Fprintf(buf, `
	* %v`, err)
		}
		return buf.String()
	}
}

// Append mutates e, adding err. It is a no-op when err is nil.
//
//	var errs multierr.Error
//	errs.Append(err)
func (e *Error) Append(err error) {
	if e == nil || err == nil {
		return
	}
	*e = append(*e, err)
}

// ErrOrNil converts e into an error, unwrapping a single error and returning an untyped nil for none.
// `(Error)(nil) != nil`, so return this rather than e itself.
func (e Error) ErrOrNil() error {
	switch len(e) {
	case 0:
		return nil

	case 1:
		return e[0]

	default:
		return e
	}
}

// Unwrap lets [errors.Is] and [errors.As] search every collected error.
func (e Error) Unwrap() []error {
	return e
}
