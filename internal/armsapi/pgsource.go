package armsapi

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource reads the armeria schema directly from Postgres.
type PGSource struct {
	pool *pgxpool.Pool
}

func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

func (s *PGSource) ListClients(ctx context.Context) ([]Client, error) {
	query := `
		SELECT c.client_id, c.first_name, c.last_name, c.document, c.email, c.phone,
		       c.import_group_id, g.label, c.data_verified, c.created_at
		FROM clients c
		LEFT JOIN import_groups g ON c.import_group_id = g.group_id
		ORDER BY c.created_at, c.client_id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(
			&c.ClientID, &c.FirstName, &c.LastName, &c.Document, &c.Email, &c.Phone,
			&c.ImportGroupID, &c.ImportGroupLabel, &c.DataVerified, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *PGSource) ListPaymentsForClient(ctx context.Context, clientID string) ([]Payment, error) {
	query := `
		SELECT payment_id, client_id, weapon_id, payment_type, total_amount, currency, issued_at
		FROM payments
		WHERE client_id = $1
		ORDER BY issued_at, payment_id
	`
	rows, err := s.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("query payments for client %s: %w", clientID, err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.PaymentID, &p.ClientID, &p.WeaponID, &p.Type, &p.TotalAmount, &p.Currency, &p.IssuedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *PGSource) ListInstallmentsForPayment(ctx context.Context, paymentID string) ([]Installment, error) {
	query := `
		SELECT installment_id, payment_id, number, amount, due_date, status, paid_at, COALESCE(notes, '')
		FROM installments
		WHERE payment_id = $1
		ORDER BY number
	`
	rows, err := s.pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("query installments for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	var installments []Installment
	for rows.Next() {
		var in Installment
		if err := rows.Scan(
			&in.InstallmentID, &in.PaymentID, &in.Number, &in.Amount, &in.DueDate,
			&in.Status, &in.PaidAt, &in.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		installments = append(installments, in)
	}
	return installments, rows.Err()
}

func (s *PGSource) ListWeaponAssignmentsForClient(ctx context.Context, clientID string) ([]WeaponAssignment, error) {
	query := `
		SELECT a.assignment_id, a.client_id, a.weapon_id, w.model, w.caliber, w.serial_number,
		       a.license_id, a.assigned_at
		FROM weapon_assignments a
		JOIN weapons w ON a.weapon_id = w.weapon_id
		WHERE a.client_id = $1
		ORDER BY a.assigned_at, a.assignment_id
	`
	rows, err := s.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("query weapon assignments for client %s: %w", clientID, err)
	}
	defer rows.Close()

	var assignments []WeaponAssignment
	for rows.Next() {
		var a WeaponAssignment
		if err := rows.Scan(
			&a.AssignmentID, &a.ClientID, &a.WeaponID, &a.Model, &a.Caliber, &a.SerialNumber,
			&a.LicenseID, &a.AssignedAt,
		); err != nil {
			return nil, fmt.Errorf("scan weapon assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (s *PGSource) GetSystemConfig(ctx context.Context) (SystemConfig, error) {
	query := `SELECT key, value FROM system_config`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return SystemConfig{}, fmt.Errorf("query system config: %w", err)
	}
	defer rows.Close()

	var cfg SystemConfig
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return SystemConfig{}, fmt.Errorf("scan system config: %w", err)
		}
		switch key {
		case "vat_percent":
			var pct float64
			if _, err := fmt.Sscanf(value, "%f", &pct); err == nil {
				cfg.VATPercent = &pct
			}
		case "default_currency":
			cfg.DefaultCurrency = value
		case "company_name":
			cfg.CompanyName = value
		}
	}
	return cfg, rows.Err()
}
