package pkg

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

// PathVar returns the unescaped route variable. Routers are set up with UseEncodedPath,
// so ids holding '/' or '?' stay a single path segment.
func PathVar(r *http.Request, name string) string {
	value := mux.Vars(r)[name]
	unescaped, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return unescaped
}
