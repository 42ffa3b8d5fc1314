package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"ArmeriaCorpAdmin/api"
	"ArmeriaCorpAdmin/api/constants"
	"ArmeriaCorpAdmin/api/utils"
	"ArmeriaCorpAdmin/internal/exports"
	"ArmeriaCorpAdmin/internal/logger"
	"ArmeriaCorpAdmin/internal/reconcile"
	"ArmeriaCorpAdmin/internal/tablequery"
)

type listRequest struct {
	UserID  string               `json:"user_id"`
	Filters tablequery.FilterSet `json:"filters"`
	Sort    tablequery.SortSpec  `json:"sort"`
	WithVAT bool                 `json:"with_vat"`
}

// ListHandler handles POST /payments/list: the reconciled ledger view.
// A roster failure is fatal and asks the operator to retry; a failure
// on one client's payments only drops that client from the view.
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

	view, err := s.buildView(r.Context(), req)
	if err != nil {
		s.writeViewError(w, err)
		return
	}

	pagination.SetPaginationStats(len(view))
	start, end := pagination.Bounds(len(view))
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rows":       view[start:end],
		"pagination": pagination,
	})
}

// ExportHandler handles POST /payments/export: the current reconciled
// view as an xlsx attachment, summary plus one installment sheet per
// payment. Weapon descriptions come from a live lookup and degrade to
// N/A when the lookup fails.
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

	view, err := s.buildView(r.Context(), req)
	if err != nil {
		s.writeViewError(w, err)
		return
	}

	fetcher := s.weaponFetcher(r.Context())
	workbook, err := exports.PaymentsWorkbook(view, exports.PaymentColumns(fetcher, req.WithVAT))
	if err != nil {
		logger.Audit("Payments export failed for user %s: %v", req.UserID, err)
		api.WriteError(w, http.StatusInternalServerError, constants.ErrExportFailed)
		return
	}

	w.Header().Set(constants.HeaderContent, constants.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="pagos.xlsx"`)
	if err := workbook.Write(w); err != nil {
		log.Printf("payments export: writing workbook: %v", err)
		return
	}
	logger.Audit("User %s exported %d payment rows", req.UserID, len(view))
}

type installmentsRequest struct {
	UserID    string `json:"user_id"`
	PaymentID string `json:"payment_id"`
}

// InstallmentsHandler handles POST /payments/installments: the schedule
// for one payment.
func (s *Service) InstallmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req installmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentID == "" {
		api.WriteError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}

	installments, err := s.source.ListInstallmentsForPayment(r.Context(), req.PaymentID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", constants.ErrDB, err))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{"installments": installments})
}

// buildView runs the full pipeline for one request: roster, reconcile,
// optional VAT, then the in-memory filter and sort pass.
func (s *Service) buildView(ctx context.Context, req listRequest) ([]reconcile.PaymentAggregate, error) {
	roster, err := s.source.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRoster, err)
	}
	aggregates, err := s.pipeline.Reconcile(ctx, roster)
	if err != nil {
		return nil, err
	}
	if req.WithVAT {
		cfg, err := s.source.GetSystemConfig(ctx)
		if err != nil {
			return nil, reconcile.ErrVATNotConfigured
		}
		if err := reconcile.ApplyVAT(aggregates, cfg); err != nil {
			return nil, err
		}
	}
	return s.engine.View(aggregates, req.Filters, req.Sort), nil
}

var errRoster = errors.New("roster unavailable")

func (s *Service) writeViewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errRoster):
		logger.Audit("Payment view failed: %v", err)
		api.WriteError(w, http.StatusInternalServerError, constants.ErrRosterUnavailable)
	case errors.Is(err, reconcile.ErrVATNotConfigured):
		api.WriteError(w, http.StatusConflict, constants.ErrVATNotConfigured)
	default:
		api.WriteError(w, http.StatusInternalServerError, constants.ErrInternalServer)
	}
}

// weaponFetcher builds the export-time weapon description lookup. The
// first assigned weapon labels the row; clients without one get N/A.
func (s *Service) weaponFetcher(ctx context.Context) exports.DetailFetcher {
	return func(clientID string) (string, error) {
		assignments, err := s.source.ListWeaponAssignmentsForClient(ctx, clientID)
		if err != nil {
			return "", err
		}
		if len(assignments) == 0 {
			return "", nil
		}
		return assignments[0].Description(), nil
	}
}
