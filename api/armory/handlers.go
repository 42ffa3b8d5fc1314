package armory

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ArmeriaCorpAdmin/api"
	"ArmeriaCorpAdmin/api/constants"
	"ArmeriaCorpAdmin/api/utils"
	"ArmeriaCorpAdmin/internal/config"
	"ArmeriaCorpAdmin/internal/tablequery"
)

type weaponsRequest struct {
	UserID  string               `json:"user_id"`
	Filters tablequery.FilterSet `json:"filters"`
	Sort    tablequery.SortSpec  `json:"sort"`
}

// WeaponsHandler handles POST /armory/weapons/list: the inventory
// filtered and sorted in memory like every other admin table.
func (s *Service) WeaponsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req weaponsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}
	pagination, err := utils.ExtractPagination(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	weapons, err := s.listWeapons(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", constants.ErrDB, err))
		return
	}

	view := s.engine.View(weapons, req.Filters, req.Sort)
	pagination.SetPaginationStats(len(view))
	start, end := pagination.Bounds(len(view))
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rows":       view[start:end],
		"pagination": pagination,
	})
}

type assignmentsRequest struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
}

// AssignmentsHandler handles POST /armory/assignments.
func (s *Service) AssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req assignmentsRequest
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

type expiringRequest struct {
	UserID     string `json:"user_id"`
	WithinDays int    `json:"within_days"`
}

// ExpiringLicensesHandler handles POST /armory/licenses/expiring. The
// window defaults to the standing warning period.
func (s *Service) ExpiringLicensesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req expiringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}
	if req.WithinDays <= 0 {
		req.WithinDays = config.LicenseExpiryWarningDays
	}

	licenses, err := s.listExpiringLicenses(r.Context(), req.WithinDays)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", constants.ErrDB, err))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{"licenses": licenses})
}

// ImportGroupsHandler handles POST /armory/import-groups.
func (s *Service) ImportGroupsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	groups, err := s.listImportGroups(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", constants.ErrDB, err))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{"import_groups": groups})
}
