package handler

import (
	"errors"
	"io"
	"net/http"

	"harf_sayi/internal/app/service"
	"harf_sayi/internal/common"
	"harf_sayi/internal/domain/model"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const maxResultBodyBytes = 1 << 20

type TestHandler struct {
	resultService *service.ResultService
}

func NewTestHandler(resultService *service.ResultService) *TestHandler {
	return &TestHandler{resultService: resultService}
}

func (h *TestHandler) RegisterRoutes(r chi.Router) {
	r.With(chiMiddleware.AllowContentType("application/json")).Post("/save", h.save)
	r.Get("/my-results", h.myResults)
}

type saveResponse struct {
	OK     bool              `json:"ok"`
	Result *model.TestResult `json:"result"`
}

func (h *TestHandler) save(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxResultBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.resultService.Save(r.Context(), body)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, saveResponse{OK: true, Result: result})
}

// myResults serves ?userId=; without it the fallback user's results are returned.
func (h *TestHandler) myResults(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := service.ParseUserID(raw)
		if err != nil {
			common.RespondWithServiceError(w, r, err)
			return
		}
		userID = &id
	}

	results, err := h.resultService.ResultsForUser(r.Context(), userID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
