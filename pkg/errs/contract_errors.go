package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ContractViolation marks errors that come from a broken caller contract,
// for example popping more operands than a block has produced.
// Such errors abort the analysis of the current method.
type ContractViolation interface {
	ContractViolation()
}

type ContractViolationImpl struct {
}

func (ContractViolationImpl) ContractViolation() {
}

func IsContractViolation(err error) bool {
	var cv ContractViolation
	return errors.As(err, &cv)
}

// ErrEmptyStack is matched with errors.Is by every EmptyStack error.
var ErrEmptyStack = EmptyStack{message: "empty stack"}

type EmptyStack struct {
	ContractViolationImpl
	message string
}

func NewEmptyStack(message string) *EmptyStack {
	return &EmptyStack{message: message}
}

func (a EmptyStack) Error() string {
	return a.message
}

func (a EmptyStack) Extend(message string) error {
	return NewEmptyStack(fmtExtend(a, message))
}

func (a EmptyStack) Is(target error) bool {
	switch target.(type) {
	case EmptyStack, *EmptyStack:
		return true
	default:
		return false
	}
}

// ErrGraphInconsistency is matched with errors.Is by every GraphInconsistency error.
var ErrGraphInconsistency = GraphInconsistency{message: "inconsistent statement graph"}

type GraphInconsistency struct {
	ContractViolationImpl
	message string
}

func NewGraphInconsistency(message string) *GraphInconsistency {
	return &GraphInconsistency{message: message}
}

func (a GraphInconsistency) Error() string {
	return a.message
}

func (a GraphInconsistency) Extend(message string) error {
	return NewGraphInconsistency(fmtExtend(a, message))
}

func (a GraphInconsistency) Is(target error) bool {
	switch target.(type) {
	case GraphInconsistency, *GraphInconsistency:
		return true
	default:
		return false
	}
}

// MethodError reports that a single method could not be analysed.
type MethodError struct {
	Method string
	err    error
}

func NewMethodError(method string, err error) *MethodError {
	return &MethodError{Method: method, err: err}
}

func (a *MethodError) Error() string {
	return fmt.Sprintf("method %q: %s", a.Method, a.err)
}

func (a *MethodError) Unwrap() error {
	return a.err
}

func (a *MethodError) Cause() error {
	return a.err
}
