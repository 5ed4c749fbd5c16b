package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell/inkwell-go/internal/middleware"
	"github.com/inkwell/inkwell-go/internal/model"
	"github.com/inkwell/inkwell-go/internal/service"
)

// EntryHandler handles HTTP requests for journal entries and tags.
type EntryHandler struct {
	service *service.EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(svc *service.EntryService) *EntryHandler {
	return &EntryHandler{service: svc}
}

// HandleCreate handles POST /api/v1/entries requests.
func (h *EntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.EntryRequest
	if !decodeJSON(w, r, 10<<20, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	resp, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /api/v1/entries/{entry_id} requests.
func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	entryID := chi.URLParam(r, "entry_id")
	if entryID == "" || len(entryID) > 26 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	resp, err := h.service.Get(r.Context(), userID, entryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PUT /api/v1/entries/{entry_id} requests.
func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	entryID := chi.URLParam(r, "entry_id")
	if entryID == "" || len(entryID) > 26 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	var req model.EntryRequest
	if !decodeJSON(w, r, 10<<20, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	resp, err := h.service.Update(r.Context(), userID, entryID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/v1/entries/{entry_id} requests.
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	entryID := chi.URLParam(r, "entry_id")
	if entryID == "" || len(entryID) > 26 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	if err := h.service.Delete(r.Context(), userID, entryID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleList handles GET /api/v1/entries requests. Supports ?tag=, ?limit=
// and ?offset= query parameters.
func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	opts := model.ListOptions{
		Tag:    r.URL.Query().Get("tag"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	resp, err := h.service.List(r.Context(), userID, opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleListTags handles GET /api/v1/tags requests.
func (h *EntryHandler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	tags, err := h.service.ListTags(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// queryInt parses an integer query parameter, treating absent or malformed
// values as zero so the service applies its defaults.
func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
