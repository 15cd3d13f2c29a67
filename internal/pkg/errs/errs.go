// Package errs narrows the cockroachdb errors API to the three helpers the
// module uses: wrapping with context, creating sentinels, and marking an
// error so errors.Is matches a sentinel while the cause chain stays intact.
package errs

import (
	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func New(msg string) error {
	return cr.New(msg)
}

func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}
