package agora

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// middleware is a convenient type for declaring middlewares.
type middleware func(httprouter.Handle) httprouter.Handle

// withMiddlewares is a helper function to declare routes with middlewares
// more easily. The caller declares its routes in the body of the f function,
// calling f's argument on its httprouter.Handle to wrap them.
func withMiddlewares(f func(middleware), middlewares ...middleware) {
	wrapper := func(handle httprouter.Handle) httprouter.Handle {
		h := handle
		for i := len(middlewares) - 1; i >= 0; i-- {
			m := middlewares[i]
			h = m(h)
		}
		return h
	}

	f(wrapper)
}

// logRequestMiddleware logs every request with its duration.
func (s *Server) logRequestMiddleware() middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return httprouter.Handle(func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
			start := time.Now()
			next(w, r, p)

			s.Logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("Request served")
		})
	}
}
