package httpx

import (
	"net/http"
	"strconv"
)

// PathID parses a positive integer path value. On failure it writes a 400 response and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}
