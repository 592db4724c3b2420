package screening

import "context"

// Sample documents for the demo audit: a compliant tea shipment from India
// whose LC names "Any Indian Port" as the port of loading.
const (
	DemoLC = `IRREVOCABLE DOCUMENTARY CREDIT
LC No: EXP/2024/0117
Issue Date: 02-02-2024
Applicant: Hanseatic Tea Importers GmbH, Hamburg
Beneficiary: Darjeeling Leaf Exports Pvt Ltd, Kolkata
Amount: USD 46,000.00
Tolerance: 5/5
Description of Goods: 12,000 KGS Darjeeling Black Tea, Orthodox Grade FTGFOP1
Incoterms 2020: CIF Hamburg
Port of Loading: Any Indian Port
Port of Discharge: Hamburg, Germany
Partial Shipments: Allowed
Transshipment: Allowed
Latest Shipment Date: 31-03-2024
Expiry Date: 30-04-2024`

	DemoInvoice = `COMMERCIAL INVOICE
Invoice No: DLE/INV/0392
Invoice Date: 12-03-2024
Exporter: Darjeeling Leaf Exports Pvt Ltd, Kolkata
Buyer: Hanseatic Tea Importers GmbH, Hamburg
Description of Goods: 12,000 KGS Darjeeling Black Tea, Orthodox Grade FTGFOP1
Quantity: 12,000 KGS
Unit Price: USD 3.80
Freight: USD 1,400.00
Insurance: USD 220.00
Total Amount: USD 45,600.00
Incoterms 2020: CIF Hamburg
Port of Loading: Kolkata (Calcutta)
Port of Discharge: Hamburg
Shipment Date: 14-03-2024`
)

// Demo audits the sample documents with the service defaults.
func (s *Service) Demo(ctx context.Context) (Result, error) {
	return s.Audit(ctx, Request{LC: DemoLC, Invoice: DemoInvoice})
}
