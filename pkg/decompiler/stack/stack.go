package stack

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wavesplatform/godecompiler/pkg/errs"
)

// PopPolicy selects what Pop does with the slot of the removed element.
type PopPolicy byte

const (
	// PopRetreat only moves the pointer down; the slot keeps its value until
	// the next Push overwrites it, so popped values can be restored with SetPointer.
	PopRetreat PopPolicy = iota
	// PopRemove physically removes the top element.
	PopRemove
)

// CopyPolicy selects how Duplicate copies the elements.
type CopyPolicy byte

const (
	CopyShallow CopyPolicy = iota
	CopyDeep
)

// ListStack is an indexable LIFO container with a logical top pointer.
// Elements at positions >= Pointer() are dead and never reported as live.
// Index 0 is the bottom of the stack.
type ListStack[T any] struct {
	data    []T
	pointer int
	pop     PopPolicy
	copy    CopyPolicy
	clone   func(T) T
}

// New creates an empty stack with the given policies.
// The clone function is required for CopyDeep and ignored otherwise.
func New[T any](pop PopPolicy, cp CopyPolicy, clone func(T) T) *ListStack[T] {
	if cp == CopyDeep && clone == nil {
		panic("stack: deep copy policy requires a clone function")
	}
	return &ListStack[T]{pop: pop, copy: cp, clone: clone}
}

// NewRetreating creates a stack that retreats its pointer on Pop and shares elements on Duplicate.
func NewRetreating[T any]() *ListStack[T] {
	return New[T](PopRetreat, CopyShallow, nil)
}

// NewCloning creates a stack that removes elements on Pop and clones every element on Duplicate.
func NewCloning[T any](clone func(T) T) *ListStack[T] {
	return New[T](PopRemove, CopyDeep, clone)
}

func (s *ListStack[T]) PopPolicy() PopPolicy {
	return s.pop
}

func (s *ListStack[T]) CopyPolicy() CopyPolicy {
	return s.copy
}

func (s *ListStack[T]) Push(e T) {
	if s.pointer < len(s.data) {
		s.data[s.pointer] = e
	} else {
		s.data = append(s.data, e)
	}
	s.pointer++
}

func (s *ListStack[T]) Pop() (T, error) {
	if s.pointer == 0 {
		var zero T
		return zero, errs.NewEmptyStack("pop from empty stack")
	}
	s.pointer--
	e := s.data[s.pointer]
	if s.pop == PopRemove {
		var zero T
		s.data[s.pointer] = zero
		s.data = s.data[:s.pointer]
	}
	return e, nil
}

// PopN pops n elements and returns them bottom to top, so that the k-th
// element of the result is the k-th operand of the consuming construct.
func (s *ListStack[T]) PopN(n int) ([]T, error) {
	if n < 0 {
		return nil, errors.Errorf("negative pop count %d", n)
	}
	if n > s.pointer {
		return nil, errs.NewEmptyStack(fmt.Sprintf("pop %d elements from stack of size %d", n, s.pointer))
	}
	out := make([]T, n)
	for i := n - 1; i >= 0; i-- {
		e, err := s.Pop()
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// Peek returns the element offset positions below the top; Peek(0) is the top.
func (s *ListStack[T]) Peek(offset int) (T, error) {
	if offset < 0 || offset >= s.pointer {
		var zero T
		return zero, errs.NewEmptyStack(fmt.Sprintf("peek at offset %d of stack of size %d", offset, s.pointer))
	}
	return s.data[s.pointer-1-offset], nil
}

// Get returns the live element at absolute index i counted from the bottom.
func (s *ListStack[T]) Get(i int) (T, error) {
	if i < 0 || i >= s.pointer {
		var zero T
		return zero, errs.NewEmptyStack(fmt.Sprintf("get index %d of stack of size %d", i, s.pointer))
	}
	return s.data[i], nil
}

// Set replaces the live element at absolute index i.
func (s *ListStack[T]) Set(i int, e T) error {
	if i < 0 || i >= s.pointer {
		return errs.NewEmptyStack(fmt.Sprintf("set index %d of stack of size %d", i, s.pointer))
	}
	s.data[i] = e
	return nil
}

// InsertByOffset inserts e so that it ends up offset positions below the top.
// InsertByOffset(0, e) is equivalent to Push(e).
func (s *ListStack[T]) InsertByOffset(offset int, e T) error {
	if offset < 0 || offset > s.pointer {
		return errs.NewEmptyStack(fmt.Sprintf("insert at offset %d of stack of size %d", offset, s.pointer))
	}
	s.truncate()
	at := s.pointer - offset
	var zero T
	s.data = append(s.data, zero)
	copy(s.data[at+1:], s.data[at:])
	s.data[at] = e
	s.pointer++
	return nil
}

// InsertAtBottom inserts e below all live elements.
func (s *ListStack[T]) InsertAtBottom(e T) {
	_ = s.InsertByOffset(s.pointer, e)
}

// Remove deletes the live element at absolute index i and shifts the
// elements above it down by one.
func (s *ListStack[T]) Remove(i int) (T, error) {
	if i < 0 || i >= s.pointer {
		var zero T
		return zero, errs.NewEmptyStack(fmt.Sprintf("remove index %d of stack of size %d", i, s.pointer))
	}
	s.truncate()
	e := s.data[i]
	copy(s.data[i:], s.data[i+1:])
	var zero T
	s.data[len(s.data)-1] = zero
	s.data = s.data[:len(s.data)-1]
	s.pointer--
	return e, nil
}

// truncate drops dead slots, which are about to lose their positions.
func (s *ListStack[T]) truncate() {
	var zero T
	for i := s.pointer; i < len(s.data); i++ {
		s.data[i] = zero
	}
	s.data = s.data[:s.pointer]
}

func (s *ListStack[T]) Size() int {
	return s.pointer
}

func (s *ListStack[T]) Empty() bool {
	return s.pointer == 0
}

func (s *ListStack[T]) Pointer() int {
	return s.pointer
}

// SetPointer moves the logical top. Moving it up revives previously popped
// slots, which is only possible with the PopRetreat policy.
func (s *ListStack[T]) SetPointer(p int) error {
	if p < 0 || p > len(s.data) {
		return errors.Errorf("pointer %d out of range [0, %d]", p, len(s.data))
	}
	if s.pop == PopRemove {
		if p > s.pointer {
			return errors.Errorf("cannot restore popped elements of a removing stack")
		}
		s.truncateTo(p)
		return nil
	}
	s.pointer = p
	return nil
}

func (s *ListStack[T]) truncateTo(p int) {
	s.pointer = p
	s.truncate()
}

// PhysicalLen returns the number of allocated slots, dead ones included.
func (s *ListStack[T]) PhysicalLen() int {
	return len(s.data)
}

// Slot returns the raw slot i regardless of the pointer. It is meant for
// inspection and restore logic, not for reading operands.
func (s *ListStack[T]) Slot(i int) (T, bool) {
	if i < 0 || i >= len(s.data) {
		var zero T
		return zero, false
	}
	return s.data[i], true
}

// Items returns a copy of the live elements, bottom first.
func (s *ListStack[T]) Items() []T {
	out := make([]T, s.pointer)
	copy(out, s.data[:s.pointer])
	return out
}

func (s *ListStack[T]) Clear() {
	s.truncateTo(0)
}

// Duplicate returns an independent stack with the same pointer.
// With CopyShallow the physical backing is copied and elements are shared;
// with CopyDeep only the live region is kept and every element is cloned.
func (s *ListStack[T]) Duplicate() *ListStack[T] {
	out := &ListStack[T]{
		pointer: s.pointer,
		pop:     s.pop,
		copy:    s.copy,
		clone:   s.clone,
	}
	switch s.copy {
	case CopyDeep:
		out.data = make([]T, s.pointer)
		for i := 0; i < s.pointer; i++ {
			out.data[i] = s.clone(s.data[i])
		}
	default:
		out.data = make([]T, len(s.data))
		copy(out.data, s.data)
	}
	return out
}
