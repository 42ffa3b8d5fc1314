package clients

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"ArmeriaCorpAdmin/internal/armsapi"
	"ArmeriaCorpAdmin/internal/checksum"
	"ArmeriaCorpAdmin/internal/config"
	"ArmeriaCorpAdmin/internal/tablequery"
)

// Service owns the client roster area: listing with filters and sort,
// xlsx export, bulk roster upload and per-client weapon lookups.
type Service struct {
	pool     *pgxpool.Pool
	source   armsapi.Source
	engine   *tablequery.Engine[armsapi.Client]
	registry *checksum.Registry
	config   map[string]interface{}
	server   *http.Server
}

func NewService(pool *pgxpool.Pool, cfg map[string]interface{}) *Service {
	return &Service{
		pool:     pool,
		source:   armsapi.NewPGSource(pool),
		engine:   tablequery.NewEngine(clientField, "data_verified"),
		registry: checksum.NewRegistry(),
		config:   cfg,
	}
}

func (s *Service) Name() string { return "clients" }

func (s *Service) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/clients/list", s.ListHandler)
	mux.HandleFunc("/clients/export", s.ExportHandler)
	mux.HandleFunc("/clients/upload", s.UploadHandler)
	mux.HandleFunc("/clients/weapons", s.WeaponsHandler)

	port := config.ClientsPort
	if p, ok := s.config["port"].(string); ok && p != "" {
		port = p
	}
	s.server = &http.Server{Addr: port, Handler: mux}
	go func() {
		log.Println("Clients service started on", port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Clients service stopped: %v", err)
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

// clientField resolves roster table columns by name for the view engine.
func clientField(c armsapi.Client, field string) interface{} {
	switch field {
	case "name":
		return c.FullName()
	case "first_name":
		return c.FirstName
	case "last_name":
		return c.LastName
	case "document":
		return c.Document
	case "email":
		return c.Email
	case "phone":
		return c.Phone
	case "import_group":
		if c.ImportGroupLabel == nil || *c.ImportGroupLabel == "" {
			return nil
		}
		return *c.ImportGroupLabel
	case "data_verified":
		if c.DataVerified == nil {
			return nil
		}
		return *c.DataVerified
	case "created_at":
		return c.CreatedAt
	default:
		return nil
	}
}
