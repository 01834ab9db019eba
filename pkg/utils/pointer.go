package utils

// ToPointer returns a pointer to the given value.
func ToPointer[T any](value T) *T {
	return &value
}

// FromPointer dereferences p, returning the zero value when p is nil.
func FromPointer[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
