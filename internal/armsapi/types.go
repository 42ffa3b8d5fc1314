package armsapi

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment types. CONTADO settles at once; FINANCIADO and CREDITO are paid
// in installments and carry an installment schedule.
const (
	PaymentTypeCash     = "CONTADO"
	PaymentTypeFinanced = "FINANCIADO"
	PaymentTypeCredit   = "CREDITO"
)

// Installment statuses.
const (
	InstallmentPaid    = "PAID"
	InstallmentPending = "PENDING"
	InstallmentOverdue = "OVERDUE"
)

type ImportGroup struct {
	GroupID     string     `json:"group_id"`
	Label       string     `json:"label"`
	ArrivalDate *time.Time `json:"arrival_date,omitempty"`
	Status      string     `json:"status"`
}

type Client struct {
	ClientID         string    `json:"client_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Document         string    `json:"document"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	ImportGroupID    *string   `json:"import_group_id,omitempty"`
	ImportGroupLabel *string   `json:"import_group_label,omitempty"`
	// DataVerified is tri-state: verified, rejected, or still pending (nil).
	DataVerified *bool     `json:"data_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c Client) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type Payment struct {
	PaymentID   string          `json:"payment_id"`
	ClientID    string          `json:"client_id"`
	WeaponID    *string         `json:"weapon_id,omitempty"`
	Type        string          `json:"type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	IssuedAt    time.Time       `json:"issued_at"`
}

// InstallmentBased reports whether the payment carries an installment
// schedule that must be fetched and reconciled.
func (p Payment) InstallmentBased() bool {
	return p.Type == PaymentTypeFinanced || p.Type == PaymentTypeCredit
}

type Installment struct {
	InstallmentID string          `json:"installment_id"`
	PaymentID     string          `json:"payment_id"`
	Number        int             `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	Status        string          `json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Notes         string          `json:"notes"`
}

type WeaponAssignment struct {
	AssignmentID string    `json:"assignment_id"`
	ClientID     string    `json:"client_id"`
	WeaponID     string    `json:"weapon_id"`
	Model        string    `json:"model"`
	Caliber      string    `json:"caliber"`
	SerialNumber string    `json:"serial_number"`
	LicenseID    *string   `json:"license_id,omitempty"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// Description is the human label used on screens and exports.
func (w WeaponAssignment) Description() string {
	s := w.Model
	if w.Caliber != "" {
		s += " " + w.Caliber
	}
	if w.SerialNumber != "" {
		s += " (" + w.SerialNumber + ")"
	}
	return s
}

// SystemConfig holds backend-managed settings. VATPercent is required for
// any tax-inclusive figure; it is nil when the backend has not configured
// it, and callers must refuse to compute rather than default it.
type SystemConfig struct {
	VATPercent      *float64 `json:"vat_percent,omitempty"`
	DefaultCurrency string   `json:"default_currency"`
	CompanyName     string   `json:"company_name"`
}
