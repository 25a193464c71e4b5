package bootstrap

import (
	"net/http"

	"github.com/gorilla/handlers"

	"agent-bootstrap/internal/config"
	"agent-bootstrap/pkg/interfaces"
)

var (
	corsMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	corsHeaders = []string{"Authorization", "Content-Type", "X-Requested-With"}
)

// CORS middleware. A "*" origin allows every origin; with credentials the
// request origin is echoed since browsers refuse "*" there. Preflights from
// other origins are answered without any CORS headers.
func CORS(cfg config.CORSConfig) interfaces.Middleware {
	opts := []handlers.CORSOption{
		handlers.AllowedMethods(corsMethods),
		handlers.AllowedHeaders(corsHeaders),
		handlers.MaxAge(600),
		handlers.OptionStatusCode(http.StatusNoContent),
	}

	if allowsAll(cfg.AllowedOrigins) && cfg.AllowCredentials {
		opts = append(opts, handlers.AllowedOriginValidator(func(string) bool { return true }))
	} else {
		opts = append(opts, handlers.AllowedOrigins(cfg.AllowedOrigins))
	}
	if cfg.AllowCredentials {
		opts = append(opts, handlers.AllowCredentials())
	}

	return interfaces.Middleware(handlers.CORS(opts...))
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
