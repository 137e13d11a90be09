package logging

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Stacktrace is the log field holding the stack of the logged error.
const Stacktrace = "stacktrace"

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStacktrace adds err to the entry, with its stack when one was recorded.
func WithStacktrace(logger *logrus.Entry, err error) *logrus.Entry {
	logger = logger.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		logger = logger.WithField(Stacktrace, stack)
	}
	return logger
}

// ExtractStack returns the outermost stack recorded by pkg/errors in the chain of err.
// Both Cause (pkg/errors) and Unwrap (fmt, multierror) links are followed.
func ExtractStack(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		switch e := err.(type) {
		case interface{ Cause() error }:
			err = e.Cause()
		case interface{ Unwrap() error }:
			err = e.Unwrap()
		default:
			return nil
		}
	}
	return nil
}
