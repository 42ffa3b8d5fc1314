package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArmeriaCorpAdmin/internal/armsapi"
)

type stubSource struct {
	mu               sync.Mutex
	payments         map[string][]armsapi.Payment
	installments     map[string][]armsapi.Installment
	failPayments     map[string]bool
	failInstallments map[string]bool
	installmentCalls []string
}

func (s *stubSource) ListPaymentsForClient(_ context.Context, clientID string) ([]armsapi.Payment, error) {
	if s.failPayments[clientID] {
		return nil, errors.New("backend unavailable")
	}
	return s.payments[clientID], nil
}

func (s *stubSource) ListInstallmentsForPayment(_ context.Context, paymentID string) ([]armsapi.Installment, error) {
	s.mu.Lock()
	s.installmentCalls = append(s.installmentCalls, paymentID)
	s.mu.Unlock()
	if s.failInstallments[paymentID] {
		return nil, errors.New("backend unavailable")
	}
	return s.installments[paymentID], nil
}

func client(id string, groupLabel string) armsapi.Client {
	c := armsapi.Client{ClientID: id, FirstName: "Cliente", LastName: id, CreatedAt: time.Now()}
	if groupLabel != "" {
		c.ImportGroupLabel = &groupLabel
	}
	return c
}

func payment(id, clientID, typ string, total float64) armsapi.Payment {
	return armsapi.Payment{
		PaymentID:   id,
		ClientID:    clientID,
		Type:        typ,
		TotalAmount: decimal.NewFromFloat(total),
		Currency:    "EUR",
	}
}

func installment(paymentID string, n int, amount float64, status, notes string) armsapi.Installment {
	return armsapi.Installment{
		PaymentID: paymentID,
		Number:    n,
		Amount:    decimal.NewFromFloat(amount),
		Status:    status,
		Notes:     notes,
	}
}

func TestReconcileBalanceInvariant(t *testing.T) {
	src := &stubSource{
		payments: map[string][]armsapi.Payment{
			"c1": {payment("p1", "c1", armsapi.PaymentTypeFinanced, 1000)},
		},
		installments: map[string][]armsapi.Installment{
			"p1": {
				installment("p1", 1, 250, armsapi.InstallmentPaid, ""),
				installment("p1", 2, 250, armsapi.InstallmentPaid, ""),
				installment("p1", 3, 250, armsapi.InstallmentPending, ""),
				installment("p1", 4, 250, armsapi.InstallmentOverdue, ""),
			},
		},
	}

	aggs, err := NewPipeline(src).Reconcile(context.Background(), []armsapi.Client{client("c1", "")})
	require.NoError(t, err)
	require.Len(t, aggs, 1)

	agg := aggs[0]
	assert.True(t, agg.PaidAmount.Equal(decimal.NewFromInt(500)), "paid = sum of PAID installments")
	assert.True(t, agg.OutstandingBalance.Equal(decimal.NewFromInt(500)))
	sum := agg.PaidAmount.Add(agg.OutstandingBalance)
	assert.True(t, sum.Equal(agg.Payment.TotalAmount), "paid + outstanding == total")
}

func TestReconcilePartialFailureIsolation(t *testing.T) {
	src := &stubSource{
		payments: map[string][]armsapi.Payment{
			"c1": {payment("p1", "c1", armsapi.PaymentTypeCash, 100)},
			"c2": {payment("p2", "c2", armsapi.PaymentTypeCash, 200)},
			"c3": {payment("p3", "c3", armsapi.PaymentTypeCash, 300)},
		},
		failPayments: map[string]bool{"c2": true},
	}
	roster := []armsapi.Client{client("c1", ""), client("c2", ""), client("c3", "")}

	aggs, err := NewPipeline(src).Reconcile(context.Background(), roster)
	require.NoError(t, err, "one failing client must not abort the pass")
	require.Len(t, aggs, 2)
	assert.Equal(t, "p1", aggs[0].Payment.PaymentID)
	assert.Equal(t, "p3", aggs[1].Payment.PaymentID)
}

func TestReconcileInstallmentFetchFailureMeansNothingPaid(t *testing.T) {
	src := &stubSource{
		payments: map[string][]armsapi.Payment{
			"c1": {payment("p1", "c1", armsapi.PaymentTypeCredit, 900)},
		},
		failInstallments: map[string]bool{"p1": true},
	}

	aggs, err := NewPipeline(src).Reconcile(context.Background(), []armsapi.Client{client("c1", "")})
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Empty(t, aggs[0].Installments)
	assert.True(t, aggs[0].PaidAmount.IsZero())
	assert.True(t, aggs[0].OutstandingBalance.Equal(decimal.NewFromInt(900)))
}

func TestReconcileOnlyFetchesInstallmentsForInstallmentBasedPayments(t *testing.T) {
	src := &stubSource{
		payments: map[string][]armsapi.Payment{
			"c1": {
				payment("cash", "c1", armsapi.PaymentTypeCash, 100),
				payment("fin", "c1", armsapi.PaymentTypeFinanced, 100),
				payment("cred", "c1", armsapi.PaymentTypeCredit, 100),
			},
		},
	}

	_, err := NewPipeline(src).Reconcile(context.Background(), []armsapi.Client{client("c1", "")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fin", "cred"}, src.installmentCalls)
}

func TestReconcileNotesAndImportGroupLabel(t *testing.T) {
	src := &stubSource{
		payments: map[string][]armsapi.Payment{
			"c1": {payment("p1", "c1", armsapi.PaymentTypeFinanced, 300)},
			"c2": {payment("p2", "c2", armsapi.PaymentTypeCash, 100)},
		},
		installments: map[string][]armsapi.Installment{
			"p1": {
				installment("p1", 1, 100, armsapi.InstallmentPaid, "pagado en efectivo"),
				installment("p1", 2, 100, armsapi.InstallmentPaid, "  "),
				installment("p1", 3, 100, armsapi.InstallmentPending, "vence en marzo"),
			},
		},
	}
	roster := []armsapi.Client{client("c1", "IMP-2026-03"), client("c2", "")}

	aggs, err := NewPipeline(src).Reconcile(context.Background(), roster)
	require.NoError(t, err)
	require.Len(t, aggs, 2)

	assert.Equal(t, "IMP-2026-03", aggs[0].ImportGroupLabel)
	assert.Equal(t, "pagado en efectivo; vence en marzo", aggs[0].Notes)
	assert.Equal(t, NoImportGroupLabel, aggs[1].ImportGroupLabel)
}

func TestReconcileParallelMatchesSequentialOrder(t *testing.T) {
	src := &stubSource{
		payments: map[string][]armsapi.Payment{
			"c1": {payment("p1", "c1", armsapi.PaymentTypeCash, 1)},
			"c2": {payment("p2a", "c2", armsapi.PaymentTypeCash, 2), payment("p2b", "c2", armsapi.PaymentTypeCash, 3)},
			"c3": {payment("p3", "c3", armsapi.PaymentTypeCash, 4)},
		},
		failPayments: map[string]bool{"c1": true},
	}
	roster := []armsapi.Client{client("c1", ""), client("c2", ""), client("c3", "")}

	sequential, err := NewPipeline(src).Reconcile(context.Background(), roster)
	require.NoError(t, err)
	parallel, err := NewPipeline(src).WithWorkers(4).Reconcile(context.Background(), roster)
	require.NoError(t, err)

	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i].Payment.PaymentID, parallel[i].Payment.PaymentID,
			"parallel mode keeps roster-then-payments order")
	}
}

func TestApplyVATRequiresConfiguration(t *testing.T) {
	aggs := []PaymentAggregate{{Payment: payment("p1", "c1", armsapi.PaymentTypeCash, 100)}}

	err := ApplyVAT(aggs, armsapi.SystemConfig{})
	assert.ErrorIs(t, err, ErrVATNotConfigured)
	assert.Nil(t, aggs[0].TotalWithVAT, "no tax figure is computed without a configured rate")

	vat := 21.0
	err = ApplyVAT(aggs, armsapi.SystemConfig{VATPercent: &vat})
	require.NoError(t, err)
	require.NotNil(t, aggs[0].TotalWithVAT)
	assert.True(t, aggs[0].TotalWithVAT.Equal(decimal.NewFromInt(121)))
}
