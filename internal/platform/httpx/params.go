package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// PathID parses a positive integer URL parameter, writing a 400 problem
// response on failure.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name)
		return 0, false
	}
	return id, true
}
