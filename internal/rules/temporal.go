package rules

import (
	"fmt"
	"time"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

// DefaultPresentationDays is the presentation window of UCP 600 Art. 14(c).
const DefaultPresentationDays = 21

const (
	refDateOrder      = "UCP 600 Art. 14(c)"
	refLatestShipment = "UCP 600 Art. 14(c); MT700 Field 44C"
	refPresentation   = "UCP 600 Art. 14(c)"
)

// TemporalRule enforces date ordering and the presentation window.
type TemporalRule struct {
	PresentationDays int
}

func (TemporalRule) Name() string { return NameTemporal }

func (r TemporalRule) window() int {
	if r.PresentationDays > 0 {
		return r.PresentationDays
	}
	return DefaultPresentationDays
}

func (r TemporalRule) Check(in Input, l *ledger.Ledger) error {
	invDate, invDateOK := r.date(in.Invoice, docInvoice, domain.FieldInvoiceDate, l)
	invShip, invShipOK := r.date(in.Invoice, docInvoice, domain.FieldShipmentDate, l)
	lcShip, lcShipOK := r.date(in.LC, docLC, domain.FieldShipmentDate, l)
	lcExpiry, lcExpiryOK := r.date(in.LC, docLC, domain.FieldExpiryDate, l)

	if invDateOK && invShipOK && invDate.After(invShip) {
		l.Add(domain.Discrepancy{
			Rule:          r.Name(),
			Field:         domain.FieldInvoiceDate,
			Category:      domain.CategoryDate,
			Severity:      domain.SeverityCritical,
			Expected:      fmt.Sprintf("on or before %s", formatDate(invShip)),
			Observed:      formatDate(invDate),
			RuleReference: refDateOrder,
			Explanation:   fmt.Sprintf("Invoice is dated %s, after its own shipment date %s.", formatDate(invDate), formatDate(invShip)),
			SuggestedFix:  "Correct the invoice date or the shipment date so the invoice is not dated after shipment.",
		})
	}

	if invShipOK && lcShipOK && invShip.After(lcShip) {
		late := daysBetween(lcShip, invShip)
		l.Add(domain.Discrepancy{
			Rule:          r.Name(),
			Field:         domain.FieldShipmentDate,
			Category:      domain.CategoryDate,
			Severity:      domain.SeverityCritical,
			Expected:      fmt.Sprintf("on or before %s", formatDate(lcShip)),
			Observed:      formatDate(invShip),
			RuleReference: refLatestShipment,
			Explanation:   fmt.Sprintf("Goods were shipped on %s, %d day(s) after the latest shipment date %s.", formatDate(invShip), late, formatDate(lcShip)),
			SuggestedFix:  "Obtain an LC amendment extending the latest shipment date.",
		})
	}

	if invShipOK && lcExpiryOK {
		window := r.window()
		gap := daysBetween(invShip, lcExpiry)
		if gap < window {
			l.Add(domain.Discrepancy{
				Rule:          r.Name(),
				Field:         domain.FieldExpiryDate,
				Category:      domain.CategoryDate,
				Severity:      domain.SeverityMajor,
				Expected:      fmt.Sprintf("at least %d days between shipment and expiry", window),
				Observed:      fmt.Sprintf("%d days", gap),
				RuleReference: refPresentation,
				Explanation: fmt.Sprintf("Stale documents: only %d day(s) between shipment on %s and expiry on %s, %d day(s) short of the %d-day presentation window.",
					gap, formatDate(invShip), formatDate(lcExpiry), window-gap, window),
				SuggestedFix: "Present documents immediately or request an amendment extending the expiry date.",
			})
		}
	}
	return nil
}

// date returns the parsed date. A date that is present but unreadable is
// recorded as a missing-field discrepancy; an absent one only skips the
// comparisons that need it.
func (r TemporalRule) date(f domain.ExtractedFields, doc document, field domain.FieldName, l *ledger.Ledger) (time.Time, bool) {
	t, ok := f.Date(field)
	if v := f.Get(field); !ok && v.Unparsed() {
		l.Add(missingField(r.Name(), doc, field, domain.CategoryDate, v, refDateOrder))
	}
	return t, ok
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
