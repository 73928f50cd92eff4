package author

import (
	"errors"
	"net/http"

	"bookmesh/internal/httpx"

	"github.com/rs/zerolog/log"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register mounts the author routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /authors", h.List)
	mux.HandleFunc("GET /authors/{id}", h.Get)
	mux.HandleFunc("POST /authors", h.Create)
	mux.HandleFunc("PUT /authors/{id}", h.Update)
	mux.HandleFunc("DELETE /authors/{id}", h.Delete)
}

// List handles GET /authors
// @Summary List authors
// @Tags authors
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /authors [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.List(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, authors, nil)
}

// Get handles GET /authors/{id}
// @Summary Get author by id
// @Tags authors
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /authors/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// Create handles POST /authors
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}

	a, err := h.service.Create(r.Context(), req.toAuthor())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, a)
}

// Update handles PUT /authors/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req Request
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}

	a, err := h.service.Update(r.Context(), id, req.toAuthor())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// Delete handles DELETE /authors/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]int64{"id": id}, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Author not found", nil)
		return
	}
	h.internalError(w, r, err)
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("author request failed")
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}
