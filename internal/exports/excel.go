// Package exports serializes filtered table views to xlsx workbooks.
// It only reads: a failed export never disturbs the in-memory view.
package exports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ArmeriaCorpAdmin/internal/armsapi"
	"ArmeriaCorpAdmin/internal/reconcile"
)

// NAValue fills every cell whose datum is absent, so all rows in a sheet
// keep the same shape.
const NAValue = "N/A"

const summarySheet = "Resumen"

// DetailFetcher resolves the weapon description for one client at export
// time. Failures degrade the cell to N/A instead of failing the export.
type DetailFetcher func(clientID string) (string, error)

// Column pairs a header with a value extractor. Columns with an empty
// header are not emitted at all; this is how callers switch optional
// columns (e.g. the VAT column) on and off.
type Column struct {
	Header string
	Value  func(agg reconcile.PaymentAggregate) interface{}
}

// PaymentColumns is the default summary layout. withVAT controls whether
// the tax-inclusive column gets a header and therefore whether it exists.
func PaymentColumns(weaponDesc DetailFetcher, withVAT bool) []Column {
	vatHeader := ""
	if withVAT {
		vatHeader = "Total con IVA"
	}
	return []Column{
		{Header: "Cliente", Value: func(a reconcile.PaymentAggregate) interface{} { return a.Client.FullName() }},
		{Header: "Documento", Value: func(a reconcile.PaymentAggregate) interface{} { return a.Client.Document }},
		{Header: "Grupo importación", Value: func(a reconcile.PaymentAggregate) interface{} { return a.ImportGroupLabel }},
		{Header: "Arma", Value: func(a reconcile.PaymentAggregate) interface{} {
			if weaponDesc == nil {
				return nil
			}
			desc, err := weaponDesc(a.Client.ClientID)
			if err != nil {
				return nil
			}
			return desc
		}},
		{Header: "Tipo de pago", Value: func(a reconcile.PaymentAggregate) interface{} { return a.Payment.Type }},
		{Header: "Total", Value: func(a reconcile.PaymentAggregate) interface{} { return a.Payment.TotalAmount }},
		{Header: "Pagado", Value: func(a reconcile.PaymentAggregate) interface{} { return a.PaidAmount }},
		{Header: "Saldo", Value: func(a reconcile.PaymentAggregate) interface{} { return a.OutstandingBalance }},
		{Header: vatHeader, Value: func(a reconcile.PaymentAggregate) interface{} {
			if a.TotalWithVAT == nil {
				return nil
			}
			return *a.TotalWithVAT
		}},
		{Header: "Observaciones", Value: func(a reconcile.PaymentAggregate) interface{} { return a.Notes }},
	}
}

// PaymentsWorkbook builds the export for the current (already filtered
// and sorted) payments view: one summary sheet plus one detail sheet per
// payment with its installment breakdown.
func PaymentsWorkbook(view []reconcile.PaymentAggregate, columns []Column) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	emitted := make([]Column, 0, len(columns))
	for _, col := range columns {
		if col.Header != "" {
			emitted = append(emitted, col)
		}
	}

	for i, col := range emitted {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(summarySheet, cell, col.Header); err != nil {
			return nil, err
		}
	}
	for r, agg := range view {
		for c, col := range emitted {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(summarySheet, cell, cellValue(col.Value(agg))); err != nil {
				return nil, err
			}
		}
	}

	for i, agg := range view {
		if err := writeDetailSheet(f, i+1, agg); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeDetailSheet(f *excelize.File, n int, agg reconcile.PaymentAggregate) error {
	sheet := fmt.Sprintf("Pago %d", n)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new detail sheet: %w", err)
	}

	header := []interface{}{"Cuota", "Importe", "Vencimiento", "Estado", "Fecha de pago", "Observaciones"}
	for c, h := range header {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, in := range agg.Installments {
		row := []interface{}{in.Number, in.Amount, in.DueDate, in.Status, in.PaidAt, in.Notes}
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ClientsWorkbook exports the filtered client roster, one row per client.
func ClientsWorkbook(view []armsapi.Client) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Clientes"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename roster sheet: %w", err)
	}

	header := []interface{}{"Nombre", "Apellidos", "Documento", "Email", "Teléfono", "Grupo importación", "Datos verificados", "Alta"}
	for c, h := range header {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for r, client := range view {
		row := []interface{}{
			client.FirstName, client.LastName, client.Document, client.Email, client.Phone,
			derefString(client.ImportGroupLabel), verifiedLabel(client.DataVerified), client.CreatedAt,
		}
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func derefString(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func verifiedLabel(v *bool) interface{} {
	if v == nil {
		return "pendiente"
	}
	if *v {
		return "validado"
	}
	return "datos incorrectos"
}

func cellValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return NAValue
	case string:
		if t == "" {
			return NAValue
		}
		return t
	case decimal.Decimal:
		return t.InexactFloat64()
	case *decimal.Decimal:
		if t == nil {
			return NAValue
		}
		return t.InexactFloat64()
	case time.Time:
		if t.IsZero() {
			return NAValue
		}
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil || t.IsZero() {
			return NAValue
		}
		return t.Format("2006-01-02")
	default:
		return v
	}
}
