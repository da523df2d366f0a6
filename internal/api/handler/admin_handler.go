package handler

import (
	"encoding/json"
	"net/http"

	"codetrack/internal/app/service"
	"codetrack/internal/common"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	mappingService *service.MappingService
}

func NewAdminHandler(ms *service.MappingService) *AdminHandler {
	return &AdminHandler{mappingService: ms}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sheets", h.addSheet)
	r.Delete("/sheets/{sheetID}", h.removeSheet)
	r.Get("/sheets", h.listSheets)
	r.Post("/mapping/refresh", h.refreshMapping)
}

type addSheetRequest struct {
	SheetID string `json:"sheet_id"`
	Name    string `json:"name,omitempty"`
}

func (h *AdminHandler) addSheet(w http.ResponseWriter, r *http.Request) {
	var req addSheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sheet, err := h.mappingService.TrackSheet(r.Context(), req.SheetID, req.Name)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sheet)
}

func (h *AdminHandler) removeSheet(w http.ResponseWriter, r *http.Request) {
	sheetID := chi.URLParam(r, "sheetID")
	if err := h.mappingService.UntrackSheet(r.Context(), sheetID); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) listSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.mappingService.ListSheets(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"sheets": sheets})
}

// refreshMapping triggers a full synchronization pass inline. It can
// safely overlap the scheduled run; upserts are idempotent.
func (h *AdminHandler) refreshMapping(w http.ResponseWriter, r *http.Request) {
	if err := h.mappingService.SyncAll(r.Context()); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
