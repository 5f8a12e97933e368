package transport

// Middleware wraps a Stage to add behavior around it.
// Middleware is applied in order: the first middleware in the chain is
// the outermost wrapper (executes first on the way in, last on the way out).
type Middleware func(Stage) Stage

// Chain composes multiple middleware into a single middleware.
// Middleware are applied in order: Chain(a, b, c) produces a(b(c(stage))).
func Chain(middlewares ...Middleware) Middleware {
	return func(next Stage) Stage {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
