package visit

type Case[S, T any] struct {
	match func(S) (T, bool)
}

func Of[S, V, T any](inner func(V) T) Case[S, T] {
	return Case[S, T]{match: func(s S) (T, bool) {
		v, ok := any(s).(V)
		if !ok {
			var zero T
			return zero, false
		}
		return inner(v), true
	}}
}

func Match[S, T, R any](v S, cases []Case[S, T], f func(T) R) (R, error) {
	for _, c := range cases {
		if inner, ok := c.match(v); ok {
			return f(inner), nil
		}
	}
	var zero R
	return zero, nil
}

func MustMatch[S, T, R any](v S, cases []Case[S, T], f func(T) R) R {
	r, _ := Match(v, cases, f)
	return r
}

func Do[S, T any](v S, cases []Case[S, T], f func(T)) error {
	for _, c := range cases {
		if inner, ok := c.match(v); ok {
			f(inner)
			return nil
		}
	}
	return nil
}
