package maybe

type Maybe[T any] struct {
	value T
	valid bool
}

func Some[T any](value T) Maybe[T] {
	return Maybe[T]{
		value: value,
		valid: true,
	}
}

func None[T any]() Maybe[T] {
	return Maybe[T]{
		valid: false,
	}
}

func SqlNull[T any](value T, valid bool) Maybe[T] {
	return Maybe[T]{
		value: value,
		valid: valid,
	}
}

// FromPtr treats a nil pointer as None.
func FromPtr[T any](p *T) Maybe[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (m Maybe[T]) IsValid() bool {
	return m.valid
}

func (m Maybe[T]) Value() T {
	return m.value
}

func (m Maybe[T]) ValueOrDefault(defaultValue T) T {
	if m.valid {
		return m.value
	}
	return defaultValue
}

// Ptr returns nil for None, used when marshaling optional JSON fields.
func (m Maybe[T]) Ptr() *T {
	if !m.valid {
		return nil
	}
	v := m.value
	return &v
}

// Map applies fn to the value when present.
func Map[T, U any](m Maybe[T], fn func(T) U) Maybe[U] {
	if !m.valid {
		return None[U]()
	}
	return Some(fn(m.value))
}
