package cli

import "errors"

// errCanceled ends a capture that saved nothing; it is reported through the exit code only.
var errCanceled = errors.New("capture canceled")

type notSavedError struct {
	err error
}

func (e notSavedError) Error() string { return "not saved: " + e.err.Error() }

func (e notSavedError) Unwrap() error { return e.err }
