package report

import (
	"github.com/recaudopro/recaudo-api/internal/pkg/spreadsheet"
)

func clientsTable(rows []ClientWithCredits) spreadsheet.Table {
	t := spreadsheet.Table{
		Sheet: "Clientes",
		Columns: []spreadsheet.Column{
			{Header: "Nombre", Width: 28},
			{Header: "Teléfono", Width: 16},
			{Header: "Documento", Width: 16},
			{Header: "Dirección", Width: 30},
			{Header: "Créditos", Width: 10},
			{Header: "Monto total", Width: 14, Money: true},
			{Header: "Saldo total", Width: 14, Money: true},
			{Header: "Cobrador", Width: 26},
			{Header: "Fecha de registro", Width: 18},
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.Name, r.Phone, r.DocumentID, r.Address, r.TotalCredits,
			r.TotalAmount, r.TotalBalance, r.UserEmail, r.CreatedAt,
		})
	}
	return t
}

func creditsTable(rows []CreditWithUserEmail) spreadsheet.Table {
	t := spreadsheet.Table{
		Sheet: "Créditos",
		Columns: []spreadsheet.Column{
			{Header: "Crédito", Width: 38},
			{Header: "Cliente", Width: 38},
			{Header: "Monto", Width: 14, Money: true},
			{Header: "Cuota", Width: 12, Money: true},
			{Header: "Cuotas", Width: 8},
			{Header: "Pagadas", Width: 8},
			{Header: "Vencidas", Width: 8},
			{Header: "Saldo", Width: 14, Money: true},
			{Header: "Último pago", Width: 14, Money: true},
			{Header: "Fecha último pago", Width: 18},
			{Header: "Próximo vencimiento", Width: 18},
			{Header: "Método de pago", Width: 16},
			{Header: "Cobrador", Width: 26},
			{Header: "Fecha de registro", Width: 18},
		},
	}
	for _, r := range rows {
		var lastPayment interface{}
		if r.LastPaymentAmount.Valid {
			lastPayment = r.LastPaymentAmount.Decimal
		}
		t.Rows = append(t.Rows, []interface{}{
			r.ID.String(), r.ClientID.String(), r.TotalAmount, r.InstallmentAmount,
			r.TotalInstallments, r.PaidInstallments, r.OverdueInstallments, r.TotalBalance,
			lastPayment, r.LastPaymentDate, r.NextDueDate, r.PaymentMethod, r.UserEmail, r.CreatedAt,
		})
	}
	return t
}

func collectionsTable(rows []CollectionWithUserEmail) spreadsheet.Table {
	t := spreadsheet.Table{
		Sheet: "Cobros",
		Columns: []spreadsheet.Column{
			{Header: "Fecha de pago", Width: 18},
			{Header: "Monto", Width: 14, Money: true},
			{Header: "Método de pago", Width: 16},
			{Header: "Referencia", Width: 20},
			{Header: "Notas", Width: 30},
			{Header: "Crédito", Width: 38},
			{Header: "Cliente", Width: 38},
			{Header: "Cobrador", Width: 26},
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.PaymentDate, r.Amount, r.PaymentMethod, r.TransactionReference, r.Notes,
			r.CreditID.String(), r.ClientID.String(), r.UserEmail,
		})
	}
	return t
}
