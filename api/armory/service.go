package armory

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ArmeriaCorpAdmin/internal/armsapi"
	"ArmeriaCorpAdmin/internal/config"
	"ArmeriaCorpAdmin/internal/tablequery"
)

// Service owns the armory area: the weapons inventory, weapon
// assignments, license expiry views and import group listings.
type Service struct {
	pool   *pgxpool.Pool
	source armsapi.Source
	engine *tablequery.Engine[Weapon]
	config map[string]interface{}
	server *http.Server
}

type Weapon struct {
	WeaponID     string     `json:"weapon_id"`
	Model        string     `json:"model"`
	Caliber      string     `json:"caliber"`
	SerialNumber string     `json:"serial_number"`
	Category     string     `json:"category"`
	Assigned     *bool      `json:"assigned"`
	ArrivedAt    *time.Time `json:"arrived_at,omitempty"`
}

type License struct {
	LicenseID string    `json:"license_id"`
	ClientID  string    `json:"client_id"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewService(pool *pgxpool.Pool, cfg map[string]interface{}) *Service {
	return &Service{
		pool:   pool,
		source: armsapi.NewPGSource(pool),
		engine: tablequery.NewEngine(weaponField, "assigned"),
		config: cfg,
	}
}

func (s *Service) Name() string { return "armory" }

func (s *Service) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/armory/weapons/list", s.WeaponsHandler)
	mux.HandleFunc("/armory/assignments", s.AssignmentsHandler)
	mux.HandleFunc("/armory/licenses/expiring", s.ExpiringLicensesHandler)
	mux.HandleFunc("/armory/import-groups", s.ImportGroupsHandler)

	port := config.ArmoryPort
	if p, ok := s.config["port"].(string); ok && p != "" {
		port = p
	}
	s.server = &http.Server{Addr: port, Handler: mux}
	go func() {
		log.Println("Armory service started on", port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Armory service stopped: %v", err)
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

func weaponField(w Weapon, field string) interface{} {
	switch field {
	case "model":
		return w.Model
	case "caliber":
		return w.Caliber
	case "serial_number":
		return w.SerialNumber
	case "category":
		return w.Category
	case "assigned":
		if w.Assigned == nil {
			return nil
		}
		return *w.Assigned
	case "arrived_at":
		if w.ArrivedAt == nil {
			return nil
		}
		return *w.ArrivedAt
	default:
		return nil
	}
}

func (s *Service) listWeapons(ctx context.Context) ([]Weapon, error) {
	query := `
		SELECT w.weapon_id, w.model, w.caliber, w.serial_number, w.category, w.arrived_at,
		       EXISTS (SELECT 1 FROM weapon_assignments a WHERE a.weapon_id = w.weapon_id)
		FROM weapons w
		ORDER BY w.model, w.serial_number
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query weapons: %w", err)
	}
	defer rows.Close()

	var weapons []Weapon
	for rows.Next() {
		var (
			w        Weapon
			assigned bool
		)
		if err := rows.Scan(&w.WeaponID, &w.Model, &w.Caliber, &w.SerialNumber, &w.Category, &w.ArrivedAt, &assigned); err != nil {
			return nil, fmt.Errorf("scan weapon: %w", err)
		}
		w.Assigned = &assigned
		weapons = append(weapons, w)
	}
	return weapons, rows.Err()
}

// listExpiringLicenses returns licenses expiring within the warning
// window, soonest first.
func (s *Service) listExpiringLicenses(ctx context.Context, withinDays int) ([]License, error) {
	query := `
		SELECT license_id, client_id, number, type, expires_at
		FROM licenses
		WHERE expires_at <= now() + make_interval(days => $1)
		ORDER BY expires_at
	`
	rows, err := s.pool.Query(ctx, query, withinDays)
	if err != nil {
		return nil, fmt.Errorf("query expiring licenses: %w", err)
	}
	defer rows.Close()

	var licenses []License
	for rows.Next() {
		var l License
		if err := rows.Scan(&l.LicenseID, &l.ClientID, &l.Number, &l.Type, &l.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		licenses = append(licenses, l)
	}
	return licenses, rows.Err()
}

func (s *Service) listImportGroups(ctx context.Context) ([]armsapi.ImportGroup, error) {
	query := `SELECT group_id, label, arrival_date, status FROM import_groups ORDER BY arrival_date DESC NULLS LAST, label`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query import groups: %w", err)
	}
	defer rows.Close()

	var groups []armsapi.ImportGroup
	for rows.Next() {
		var g armsapi.ImportGroup
		if err := rows.Scan(&g.GroupID, &g.Label, &g.ArrivalDate, &g.Status); err != nil {
			return nil, fmt.Errorf("scan import group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
