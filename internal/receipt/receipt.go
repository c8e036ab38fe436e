package receipt

import (
	"io"
	"text/template"
	"time"

	"smartpark/ledger-service/internal/models"

	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04"

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	"when":  func(t time.Time) string { return t.Format(timeLayout) },
}

var ticketTemplate = template.Must(template.New("ticket").Funcs(funcs).Parse(`SMARTPARK ENTRY TICKET
{{.BranchName}}
------------------------------
Plate:   {{.Vehicle.PlateNumber}}
Vehicle: {{.Vehicle.Model}} / {{.Vehicle.Color}}
Type:    {{.Vehicle.Category}}
Slot:    {{.Vehicle.SlotID}}
Entry:   {{when .Vehicle.EntryTime}}
Ticket:  {{.Vehicle.VehicleID}}
------------------------------
Keep this ticket until exit.
`))

var receiptTemplate = template.Must(template.New("receipt").Funcs(funcs).Parse(`SMARTPARK RECEIPT
{{.BranchName}}
------------------------------
Plate:    {{.Transaction.PlateNumber}}
Type:     {{.Transaction.Category}}
Entry:    {{when .Transaction.EntryTime}}
Exit:     {{when .Transaction.ExitTime}}
Duration: {{.Transaction.DurationMinutes}} min ({{.Transaction.BillableHours}} h)
------------------------------
Parking:  {{money .Transaction.BaseAmount}}
{{- range .Transaction.Items}}
  + {{.}}
{{- end}}
Extras:   {{money .Transaction.ExtraAmount}}
Discount: -{{money .Transaction.DiscountAmount}}
TOTAL:    {{money .Transaction.FinalAmount}}
------------------------------
Receipt:  {{.Transaction.TransactionID}}
`))

// RenderTicket writes the printable entry ticket for an active vehicle.
func RenderTicket(w io.Writer, branchName string, vehicle models.Vehicle) error {
	return ticketTemplate.Execute(w, struct {
		BranchName string
		Vehicle    models.Vehicle
	}{BranchName: branchName, Vehicle: vehicle})
}

// RenderReceipt writes the printable receipt for a closed transaction.
func RenderReceipt(w io.Writer, branchName string, txn models.Transaction) error {
	return receiptTemplate.Execute(w, struct {
		BranchName  string
		Transaction models.Transaction
	}{BranchName: branchName, Transaction: txn})
}
