package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// IExtend is implemented by typed errors that keep their type when context is added.
type IExtend interface {
	Extend(message string) error
}

// Extend prefixes err with message. Typed errors stay matchable with errors.Is
// and IsContractViolation; other errors are wrapped.
func Extend(err error, message string) error {
	if err == nil {
		return nil
	}
	if ex, ok := err.(IExtend); ok {
		return ex.Extend(message)
	}
	return errors.Wrap(err, message)
}

func Extendf(err error, format string, args ...any) error {
	return Extend(err, fmt.Sprintf(format, args...))
}

func fmtExtend(self error, message string) string {
	return fmt.Sprintf("%s: %s", message, self)
}
