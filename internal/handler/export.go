package handler

import (
	"net/http"

	"github.com/inkwell/inkwell-go/internal/middleware"
	"github.com/inkwell/inkwell-go/internal/service"
)

// ExportHandler handles HTTP requests for journal exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// HandleExport handles GET /api/v1/export?format= requests. The format
// defaults to json.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = service.FormatJSON
	}

	result, err := h.service.Export(r.Context(), userID, format)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}
