package service

// Field is one value of a partial update. A zero Field leaves the stored
// value alone; a set Field with a nil Value clears it.
type Field[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a Field that overwrites the stored value with v.
func SetTo[T any](v T) Field[T] { return Field[T]{Set: true, Value: &v} }

// Cleared returns a Field that nulls the stored value.
func Cleared[T any]() Field[T] { return Field[T]{Set: true} }

func (f Field[T]) applyTo(dst **T) {
	if f.Set {
		*dst = f.Value
	}
}
