package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validatable is implemented by request bodies that check themselves.
type Validatable interface {
	Validate() error
}

// DecodeAndValidate reads a JSON body into dst and runs its validation rules.
// On failure it writes a 400 response and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst Validatable) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			return false
		}
		if errors.Is(err, io.EOF) {
			JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body is empty", nil)
			return false
		}
		JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", fmt.Sprintf("Invalid JSON body: %v", err), nil)
		return false
	}

	if err := dst.Validate(); err != nil {
		JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", ValidationDetails(err))
		return false
	}
	return true
}

// ValidationDetails flattens ozzo-validation errors into per-field details, sorted by field.
func ValidationDetails(err error) []ErrorDetail {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for field, ferr := range verrs {
		details = append(details, ErrorDetail{Field: field, Message: ferr.Error()})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
	return details
}
