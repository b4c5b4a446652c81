package channels

import "net/http"

// Channel is a messaging integration that receives messages over the gateway.
type Channel interface {
	Name() string
	RegisterRoutes(mux *http.ServeMux)
}
