package clients

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"ArmeriaCorpAdmin/api"
	"ArmeriaCorpAdmin/api/constants"
	"ArmeriaCorpAdmin/api/utils"
	"ArmeriaCorpAdmin/internal/exports"
	"ArmeriaCorpAdmin/internal/logger"
	"ArmeriaCorpAdmin/internal/tablequery"
)

type listRequest struct {
	UserID  string              `json:"user_id"`
	Filters tablequery.FilterSet `json:"filters"`
	Sort    tablequery.SortSpec  `json:"sort"`
}

// ListHandler handles POST /clients/list: the full roster filtered and
// sorted in memory, paginated for the table.
func (s *Service) ListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}
	pagination, err := utils.ExtractPagination(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	roster, err := s.source.ListClients(r.Context())
	if err != nil {
		logger.Audit("Client roster fetch failed: %v", err)
		api.WriteError(w, http.StatusInternalServerError, constants.ErrRosterUnavailable)
		return
	}

	view := s.engine.View(roster, req.Filters, req.Sort)
	pagination.SetPaginationStats(len(view))
	start, end := pagination.Bounds(len(view))

	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rows":       view[start:end],
		"pagination": pagination,
	})
}

// ExportHandler handles POST /clients/export: the current filtered view
// as an xlsx attachment. The view itself is never touched; a failed
// export only returns an error.
func (s *Service) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}

	roster, err := s.source.ListClients(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, constants.ErrRosterUnavailable)
		return
	}
	view := s.engine.View(roster, req.Filters, req.Sort)

	workbook, err := exports.ClientsWorkbook(view)
	if err != nil {
		logger.Audit("Client export failed for user %s: %v", req.UserID, err)
		api.WriteError(w, http.StatusInternalServerError, constants.ErrExportFailed)
		return
	}

	w.Header().Set(constants.HeaderContent, constants.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="clientes.xlsx"`)
	if err := workbook.Write(w); err != nil {
		log.Printf("clients export: writing workbook: %v", err)
		return
	}
	logger.Audit("User %s exported %d clients", req.UserID, len(view))
}

type weaponsRequest struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
}

// WeaponsHandler handles POST /clients/weapons: the weapon assignments
// of one client.
func (s *Service) WeaponsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req weaponsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID == "" {
		api.WriteError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}

	assignments, err := s.source.ListWeaponAssignmentsForClient(r.Context(), req.ClientID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", constants.ErrDB, err))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{"assignments": assignments})
}
