package exports

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArmeriaCorpAdmin/internal/armsapi"
	"ArmeriaCorpAdmin/internal/reconcile"
)

func sampleView() []reconcile.PaymentAggregate {
	group := "IMP-2026-01"
	return []reconcile.PaymentAggregate{
		{
			Payment: armsapi.Payment{
				PaymentID:   "p1",
				ClientID:    "c1",
				Type:        armsapi.PaymentTypeFinanced,
				TotalAmount: decimal.NewFromInt(1000),
			},
			Client: armsapi.Client{
				ClientID: "c1", FirstName: "Ana", LastName: "García",
				Document: "12345678Z", ImportGroupLabel: &group,
			},
			Installments: []armsapi.Installment{
				{Number: 1, Amount: decimal.NewFromInt(500), Status: armsapi.InstallmentPaid, Notes: "transferencia"},
				{Number: 2, Amount: decimal.NewFromInt(500), Status: armsapi.InstallmentPending},
			},
			PaidAmount:         decimal.NewFromInt(500),
			OutstandingBalance: decimal.NewFromInt(500),
			ImportGroupLabel:   group,
			Notes:              "transferencia",
		},
		{
			Payment: armsapi.Payment{
				PaymentID:   "p2",
				ClientID:    "c2",
				Type:        armsapi.PaymentTypeCash,
				TotalAmount: decimal.NewFromInt(300),
			},
			Client:             armsapi.Client{ClientID: "c2", FirstName: "Beto", LastName: "Luna"},
			PaidAmount:         decimal.Zero,
			OutstandingBalance: decimal.NewFromInt(300),
			ImportGroupLabel:   reconcile.NoImportGroupLabel,
		},
	}
}

func TestPaymentsWorkbookSummarySheet(t *testing.T) {
	weaponDesc := func(clientID string) (string, error) {
		if clientID == "c1" {
			return "CZ 457 .22LR (SN-0099)", nil
		}
		return "", errors.New("lookup failed")
	}

	f, err := PaymentsWorkbook(sampleView(), PaymentColumns(weaponDesc, false))
	require.NoError(t, err)

	rows, err := f.GetRows("Resumen")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per aggregate")

	header := rows[0]
	assert.Equal(t, []string{
		"Cliente", "Documento", "Grupo importación", "Arma",
		"Tipo de pago", "Total", "Pagado", "Saldo", "Observaciones",
	}, header, "the VAT column has no header so it is not emitted")

	assert.Equal(t, "Ana García", rows[1][0])
	assert.Equal(t, "CZ 457 .22LR (SN-0099)", rows[1][3])
	assert.Equal(t, NAValue, rows[2][3], "failed weapon lookup degrades to N/A")
	assert.Equal(t, NAValue, rows[2][8], "empty notes become N/A, keeping row shape uniform")
	assert.Equal(t, reconcile.NoImportGroupLabel, rows[2][2])
}

func TestPaymentsWorkbookVATColumnIsDataDriven(t *testing.T) {
	view := sampleView()
	vat := decimal.NewFromInt(1210)
	view[0].TotalWithVAT = &vat

	f, err := PaymentsWorkbook(view, PaymentColumns(nil, true))
	require.NoError(t, err)

	rows, err := f.GetRows("Resumen")
	require.NoError(t, err)
	require.Contains(t, rows[0], "Total con IVA")
	assert.Equal(t, "1210", rows[1][8])
	assert.Equal(t, NAValue, rows[2][8], "aggregate without a tax figure shows N/A")
}

func TestPaymentsWorkbookDetailSheets(t *testing.T) {
	f, err := PaymentsWorkbook(sampleView(), PaymentColumns(nil, false))
	require.NoError(t, err)

	rows, err := f.GetRows("Pago 1")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per installment")
	assert.Equal(t, "Cuota", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "transferencia", rows[1][5])
	assert.Equal(t, NAValue, rows[2][4], "unpaid installment has no payment date")

	rows, err = f.GetRows("Pago 2")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "cash payment has no installments, only the header")
}

func TestClientsWorkbook(t *testing.T) {
	yes := true
	group := "IMP-2026-01"
	view := []armsapi.Client{
		{FirstName: "Ana", LastName: "García", Document: "12345678Z", DataVerified: &yes, ImportGroupLabel: &group},
		{FirstName: "Beto", LastName: "Luna", Document: "87654321X"},
	}

	f, err := ClientsWorkbook(view)
	require.NoError(t, err)

	rows, err := f.GetRows("Clientes")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "validado", rows[1][6])
	assert.Equal(t, "pendiente", rows[2][6])
	assert.Equal(t, NAValue, rows[2][5], "no import group exports as N/A")
}
