package clone

type Cloner[T any] interface {
	Clone() T
}

func DeepSlice[T Cloner[T]](a []T) []T {
	if a == nil {
		return nil
	}
	res := make([]T, len(a))
	for i, v := range a {
		res[i] = v.Clone()
	}
	return res
}

func TrivialSlice[T any](a []T) []T {
	if a == nil {
		return nil
	}
	res := make([]T, len(a))
	copy(res, a)
	return res
}

func DeepMap[K comparable, V Cloner[V]](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	res := make(map[K]V, len(m))
	for k, v := range m {
		res[k] = v.Clone()
	}
	return res
}
