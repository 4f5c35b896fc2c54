package pointer

// To returns a pointer to a copy of value.
func To[T any](value T) *T {
	return &value
}

// OrDefault dereferences value, or returns defaultValue if value is nil.
func OrDefault[T any](value *T, defaultValue T) T {
	if value == nil {
		return defaultValue
	}
	return *value
}

// IfValid returns a pointer to value if valid, otherwise nil.
func IfValid[T any](valid bool, value T) *T {
	if !valid {
		return nil
	}
	return &value
}

// Copy returns a pointer to a copy of *value, or nil.
func Copy[T any](value *T) *T {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
