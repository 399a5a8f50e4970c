package util

// InPlaceFilter keeps only the elements of s for which p returns true,
// reusing the backing array.
func InPlaceFilter[T any](s *[]T, p func(T) bool) {
	i := 0
	for _, e := range *s {
		if p(e) {
			(*s)[i] = e
			i++
		}
	}
	*s = (*s)[:i]
}

// Filter returns a new slice holding the elements of s for which p returns
// true. The input slice is left untouched.
func Filter[T any](s []T, p func(T) bool) []T {
	out := make([]T, len(s))
	copy(out, s)
	InPlaceFilter(&out, p)
	return out
}
