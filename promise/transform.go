package promise

// Map derives a promise that resolves with the result of f applied to the value of p. If p is rejected or f returns
// an error, the derived promise is rejected with that error.
func Map[V, U any](p *Promise[V], f func(V) (U, error)) *Promise[U] {
	return New(func(resolve func(U), reject func(error)) {
		p.Then(func(value V) {
			mapped, err := f(value)
			if err != nil {
				reject(err)

				return
			}

			resolve(mapped)
		}).Catch(reject)
	}, p.settings.options()...)
}
