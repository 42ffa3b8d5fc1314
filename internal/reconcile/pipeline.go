// Package reconcile rebuilds the payment ledger view: every payment of
// every client, enriched with its installments and a recomputed balance.
// Aggregates are always rebuilt from scratch; nothing here writes.
package reconcile

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"ArmeriaCorpAdmin/internal/armsapi"
)

// NoImportGroupLabel is the display sentinel for clients outside any
// import group.
const NoImportGroupLabel = "N/A"

// Source is the slice of the fetch API the pipeline needs.
type Source interface {
	ListPaymentsForClient(ctx context.Context, clientID string) ([]armsapi.Payment, error)
	ListInstallmentsForPayment(ctx context.Context, paymentID string) ([]armsapi.Installment, error)
}

// PaymentAggregate is one UI-ready row: the payment, its owner, the
// installment breakdown and the derived balance figures. TotalWithVAT is
// only set once ApplyVAT has run with a configured VAT percentage.
type PaymentAggregate struct {
	Payment            armsapi.Payment       `json:"payment"`
	Client             armsapi.Client        `json:"client"`
	Installments       []armsapi.Installment `json:"installments"`
	PaidAmount         decimal.Decimal       `json:"paid_amount"`
	OutstandingBalance decimal.Decimal       `json:"outstanding_balance"`
	ImportGroupLabel   string                `json:"import_group_label"`
	Notes              string                `json:"notes"`
	TotalWithVAT       *decimal.Decimal      `json:"total_with_vat,omitempty"`
}

type Pipeline struct {
	src     Source
	workers int
}

func NewPipeline(src Source) *Pipeline {
	return &Pipeline{src: src, workers: 1}
}

// WithWorkers bounds how many clients are fetched concurrently. The
// default of 1 keeps the original one-client-at-a-time behavior; any
// larger bound still isolates failures per client and still emits
// aggregates in roster order.
func (p *Pipeline) WithWorkers(n int) *Pipeline {
	if n < 1 {
		n = 1
	}
	p.workers = n
	return p
}

// Reconcile produces one aggregate per payment across the roster, in
// roster-then-payments order. A failing payments fetch drops only that
// client's contribution; the rest of the roster is still processed.
func (p *Pipeline) Reconcile(ctx context.Context, clients []armsapi.Client) ([]PaymentAggregate, error) {
	if p.workers > 1 {
		return p.reconcileParallel(ctx, clients)
	}

	var aggregates []PaymentAggregate
	for _, client := range clients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := p.clientAggregates(ctx, client)
		if err != nil {
			log.Printf("reconcile: skipping client %s: %v", client.ClientID, err)
			continue
		}
		aggregates = append(aggregates, rows...)
	}
	return aggregates, nil
}

func (p *Pipeline) reconcileParallel(ctx context.Context, clients []armsapi.Client) ([]PaymentAggregate, error) {
	results := make([][]PaymentAggregate, len(clients))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, client := range clients {
		wg.Add(1)
		go func(i int, client armsapi.Client) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rows, err := p.clientAggregates(ctx, client)
			if err != nil {
				log.Printf("reconcile: skipping client %s: %v", client.ClientID, err)
				return
			}
			results[i] = rows
		}(i, client)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var aggregates []PaymentAggregate
	for _, rows := range results {
		aggregates = append(aggregates, rows...)
	}
	return aggregates, nil
}

func (p *Pipeline) clientAggregates(ctx context.Context, client armsapi.Client) ([]PaymentAggregate, error) {
	payments, err := p.src.ListPaymentsForClient(ctx, client.ClientID)
	if err != nil {
		return nil, err
	}

	rows := make([]PaymentAggregate, 0, len(payments))
	for _, payment := range payments {
		var installments []armsapi.Installment
		if payment.InstallmentBased() {
			installments, err = p.src.ListInstallmentsForPayment(ctx, payment.PaymentID)
			if err != nil {
				// The payment itself still shows up, with nothing paid.
				log.Printf("reconcile: payment %s: installments unavailable: %v", payment.PaymentID, err)
				installments = nil
			}
		}
		rows = append(rows, buildAggregate(client, payment, installments))
	}
	return rows, nil
}

func buildAggregate(client armsapi.Client, payment armsapi.Payment, installments []armsapi.Installment) PaymentAggregate {
	paid := decimal.Zero
	var notes []string
	for _, in := range installments {
		if in.Status == armsapi.InstallmentPaid {
			paid = paid.Add(in.Amount)
		}
		if strings.TrimSpace(in.Notes) != "" {
			notes = append(notes, strings.TrimSpace(in.Notes))
		}
	}

	label := NoImportGroupLabel
	if client.ImportGroupLabel != nil && *client.ImportGroupLabel != "" {
		label = *client.ImportGroupLabel
	}

	return PaymentAggregate{
		Payment:            payment,
		Client:             client,
		Installments:       installments,
		PaidAmount:         paid,
		OutstandingBalance: payment.TotalAmount.Sub(paid),
		ImportGroupLabel:   label,
		Notes:              strings.Join(notes, "; "),
	}
}
