package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"harf_sayi/internal/app/service"
	"harf_sayi/internal/common"
	"harf_sayi/internal/platform/spreadsheet"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	authService   *service.AuthService
	resultService *service.ResultService
}

func NewAdminHandler(authService *service.AuthService, resultService *service.ResultService) *AdminHandler {
	return &AdminHandler{authService: authService, resultService: resultService}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.listUsers)
	r.Get("/all-results", h.allResults)
	r.Get("/all-results/export", h.exportResults)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *AdminHandler) allResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.resultService.AllResults(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *AdminHandler) exportResults(w http.ResponseWriter, r *http.Request) {
	// Buffered so a failed export can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.resultService.ExportAll(r.Context(), &buf); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}

	filename := "test-results-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
