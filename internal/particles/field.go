package particles

import (
	"fmt"
	"reflect"
)

// field is the untyped handle the store uses to manage every
// registered attribute array in lockstep.
type field interface {
	fieldName() string
	typeLabel() string
	resize(n int)
	copyWithin(dst, src int)
	swapWithin(a, b int)
	permuteReal(perm []int)
	exportPrefix(n int) any
	importPrefix(n int, v any) error
}

// Field is a named, contiguous attribute array with one value per
// particle slot. The backing slice is replaced on capacity growth, so
// hot loops should re-fetch Data after any lifecycle call that can
// grow the store.
type Field[T any] struct {
	name string
	data []T
}

func (f *Field[T]) Name() string { return f.name }
func (f *Field[T]) Data() []T    { return f.data }
func (f *Field[T]) Len() int     { return len(f.data) }

func (f *Field[T]) fieldName() string { return f.name }

func (f *Field[T]) typeLabel() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

func (f *Field[T]) resize(n int) {
	if n == len(f.data) {
		return
	}
	next := make([]T, n)
	copy(next, f.data)
	f.data = next
}

func (f *Field[T]) copyWithin(dst, src int) {
	f.data[dst] = f.data[src]
}

func (f *Field[T]) swapWithin(a, b int) {
	f.data[a], f.data[b] = f.data[b], f.data[a]
}

func (f *Field[T]) permuteReal(perm []int) {
	scratch := make([]T, len(perm))
	for i, p := range perm {
		scratch[i] = f.data[p]
	}
	copy(f.data, scratch)
}

func (f *Field[T]) exportPrefix(n int) any {
	out := make([]T, n)
	copy(out, f.data[:n])
	return out
}

func (f *Field[T]) importPrefix(n int, v any) error {
	src, ok := v.([]T)
	if !ok {
		return fmt.Errorf("particles: field %q: cannot restore %T into []%s",
			f.name, v, f.typeLabel())
	}
	if len(src) != n {
		return fmt.Errorf("particles: field %q: restored length %d, want %d",
			f.name, len(src), n)
	}
	copy(f.data[:n], src)
	return nil
}

// Register creates the named attribute array with element type T, or
// returns the existing one. Registration is idempotent per (name,
// type); re-registering a name with a different element type fails
// with a *TypeConflictError. The array is sized to the store's current
// particle bound and default-initialized.
func Register[T any](s *Store, name string) (*Field[T], error) {
	if existing, ok := s.fields[name]; ok {
		f, ok := existing.(*Field[T])
		if !ok {
			return nil, &TypeConflictError{
				Name:      name,
				Existing:  existing.typeLabel(),
				Requested: reflect.TypeOf((*T)(nil)).Elem().String(),
			}
		}
		return f, nil
	}

	f := &Field[T]{name: name, data: make([]T, s.capacity)}
	s.fields[name] = f
	s.order = append(s.order, f)
	return f, nil
}

// RegisterFunc registers the field and fills every current slot from
// the initializer. On an already-registered field the initializer is
// not applied, mirroring Register's idempotence.
func RegisterFunc[T any](s *Store, name string, init func(i int) T) (*Field[T], error) {
	_, existed := s.fields[name]
	f, err := Register[T](s, name)
	if err != nil || existed {
		return f, err
	}
	for i := range f.data {
		f.data[i] = init(i)
	}
	return f, nil
}

func mustRegister[T any](s *Store, name string) *Field[T] {
	f, err := Register[T](s, name)
	if err != nil {
		panic(err)
	}
	return f
}
