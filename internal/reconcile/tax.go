package reconcile

import (
	"errors"

	"github.com/shopspring/decimal"

	"ArmeriaCorpAdmin/internal/armsapi"
)

// ErrVATNotConfigured means the backend has no VAT percentage yet. Tax
// figures are refused rather than defaulted: a guessed rate would put
// wrong money amounts in front of the administrator.
var ErrVATNotConfigured = errors.New("vat percentage is not configured in system config")

// ApplyVAT fills TotalWithVAT on every aggregate from the configured VAT
// percentage. It is all-or-nothing: with no configured rate no aggregate
// is touched and ErrVATNotConfigured is returned.
func ApplyVAT(aggregates []PaymentAggregate, cfg armsapi.SystemConfig) error {
	if cfg.VATPercent == nil {
		return ErrVATNotConfigured
	}
	rate := decimal.NewFromFloat(*cfg.VATPercent).Div(decimal.NewFromInt(100))
	for i := range aggregates {
		total := aggregates[i].Payment.TotalAmount
		gross := total.Add(total.Mul(rate))
		aggregates[i].TotalWithVAT = &gross
	}
	return nil
}
