package payments

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"ArmeriaCorpAdmin/internal/armsapi"
	"ArmeriaCorpAdmin/internal/config"
	"ArmeriaCorpAdmin/internal/reconcile"
	"ArmeriaCorpAdmin/internal/tablequery"
)

// Service owns the payments ledger area: the reconciled payment view
// with filters, sort and optional VAT, its xlsx export, and installment
// detail lookups.
type Service struct {
	pool     *pgxpool.Pool
	source   armsapi.Source
	pipeline *reconcile.Pipeline
	engine   *tablequery.Engine[reconcile.PaymentAggregate]
	config   map[string]interface{}
	server   *http.Server
}

func NewService(pool *pgxpool.Pool, cfg map[string]interface{}) *Service {
	source := armsapi.NewPGSource(pool)
	pipeline := reconcile.NewPipeline(source)
	if workers, ok := cfg["reconcile_workers"].(int); ok && workers > 1 {
		pipeline = pipeline.WithWorkers(workers)
	}
	return &Service{
		pool:     pool,
		source:   source,
		pipeline: pipeline,
		engine:   tablequery.NewEngine(aggregateField, "data_verified"),
		config:   cfg,
	}
}

func (s *Service) Name() string { return "payments" }

func (s *Service) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/payments/list", s.ListHandler)
	mux.HandleFunc("/payments/export", s.ExportHandler)
	mux.HandleFunc("/payments/installments", s.InstallmentsHandler)

	port := config.PaymentsPort
	if p, ok := s.config["port"].(string); ok && p != "" {
		port = p
	}
	s.server = &http.Server{Addr: port, Handler: mux}
	go func() {
		log.Println("Payments service started on", port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Payments service stopped: %v", err)
		}
	}()
	return nil
}

func (s *Service) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// aggregateField resolves ledger table columns by name for the view
// engine. Balance figures compare numerically through decimal.
func aggregateField(a reconcile.PaymentAggregate, field string) interface{} {
	switch field {
	case "client":
		return a.Client.FullName()
	case "document":
		return a.Client.Document
	case "import_group":
		return a.ImportGroupLabel
	case "type":
		return a.Payment.Type
	case "currency":
		return a.Payment.Currency
	case "total":
		return a.Payment.TotalAmount
	case "paid":
		return a.PaidAmount
	case "balance":
		return a.OutstandingBalance
	case "total_with_vat":
		if a.TotalWithVAT == nil {
			return nil
		}
		return *a.TotalWithVAT
	case "notes":
		if a.Notes == "" {
			return nil
		}
		return a.Notes
	case "issued_at":
		return a.Payment.IssuedAt
	case "data_verified":
		if a.Client.DataVerified == nil {
			return nil
		}
		return *a.Client.DataVerified
	default:
		return nil
	}
}
