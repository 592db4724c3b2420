// Command generate writes reproducible LC/invoice batch files to testdata/
// for exercising `lcaudit batch` and the batch endpoint.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exportsafe/lcaudit/internal/currency"
)

const dateLayout = "02-01-2006"

type party struct {
	name string
	city string
}

type goods struct {
	description string
	unit        string
	minPrice    float64
	maxPrice    float64
}

type route struct {
	loading   string
	discharge string
}

var (
	beneficiaries = []party{
		{"Darjeeling Leaf Exports Pvt Ltd", "Kolkata"},
		{"Coromandel Cotton Mills Ltd", "Chennai"},
		{"Malabar Spice Traders", "Kochi"},
		{"Saurashtra Ceramics Pvt Ltd", "Morbi"},
		{"Deccan Auto Components Ltd", "Pune"},
	}
	applicants = []party{
		{"Hanseatic Tea Importers GmbH", "Hamburg"},
		{"Rotterdam Commodity Partners BV", "Rotterdam"},
		{"Gulf Trading House LLC", "Dubai"},
		{"Pacific Home Goods Inc", "Los Angeles"},
	}
	catalogue = []goods{
		{"Darjeeling Black Tea, Orthodox Grade FTGFOP1", "KGS", 3.2, 4.5},
		{"100% Cotton Bed Sheets, 300 Thread Count", "PCS", 6.5, 11},
		{"Black Pepper, Malabar Garbled MG1", "KGS", 5.8, 7.4},
		{"Glazed Vitrified Floor Tiles 600x600mm", "SQM", 4.1, 6.2},
		{"Forged Steel Crankshafts, Part No. DC-4471", "PCS", 38, 55},
	}
	routes = []route{
		{"Kolkata", "Hamburg"},
		{"Chennai", "Rotterdam"},
		{"Nhava Sheva", "Jebel Ali"},
		{"Mundra", "Los Angeles"},
	}
)

// shipment carries both documents' fields. Scenarios perturb the invoice side.
type shipment struct {
	id          string
	scenario    string
	lcNumber    string
	issueDate   time.Time
	latest      time.Time
	expiry      time.Time
	applicant   party
	beneficiary party
	goods       goods
	quantity    int64
	unitPrice   decimal.Decimal
	lcAmount    decimal.Decimal
	route       route
	place       string

	invNumber      string
	invDate        time.Time
	shipDate       time.Time
	invExporter    string
	invDescription string
	invCurrency    string
	invIncoterm    string
	invDischarge   string
	freight        decimal.Decimal
	insurance      decimal.Decimal
	beneficiaryTag string
}

type scenario struct {
	name   string
	weight float64
	apply  func(rng *rand.Rand, s *shipment)
}

var scenarios = []scenario{
	{"clean", 0.45, func(*rand.Rand, *shipment) {}},
	{"amount_over_tolerance", 0.08, func(rng *rand.Rand, s *shipment) {
		// Push the invoice total 7-12% over the credit amount.
		bump := decimal.NewFromFloat(1.07 + rng.Float64()*0.05)
		s.unitPrice = s.unitPrice.Mul(bump).Round(2)
	}},
	{"late_shipment", 0.08, func(rng *rand.Rand, s *shipment) {
		s.shipDate = s.latest.AddDate(0, 0, 2+rng.Intn(9))
		s.invDate = s.shipDate.AddDate(0, 0, -1)
	}},
	{"port_change", 0.07, func(rng *rand.Rand, s *shipment) {
		for {
			r := routes[rng.Intn(len(routes))]
			if r.discharge != s.route.discharge {
				s.invDischarge = r.discharge
				return
			}
		}
	}},
	{"description_change", 0.07, func(rng *rand.Rand, s *shipment) {
		for {
			g := catalogue[rng.Intn(len(catalogue))]
			if g.description != s.goods.description {
				s.invDescription = fmt.Sprintf("%s %s %s", quantity(s.quantity), s.goods.unit, g.description)
				return
			}
		}
	}},
	{"fob_with_freight", 0.06, func(_ *rand.Rand, s *shipment) {
		s.invIncoterm = "FOB " + s.route.loading
	}},
	{"currency_mismatch", 0.06, func(_ *rand.Rand, s *shipment) {
		s.invCurrency = "EUR"
	}},
	{"party_mismatch", 0.06, func(rng *rand.Rand, s *shipment) {
		for {
			p := beneficiaries[rng.Intn(len(beneficiaries))]
			if p.name != s.beneficiary.name {
				s.invExporter = fmt.Sprintf("%s, %s", p.name, p.city)
				return
			}
		}
	}},
	{"misspelled_lc", 0.07, func(_ *rand.Rand, s *shipment) {
		s.beneficiaryTag = "Benificiary"
	}},
}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	// Credits issued between 2024-01-08 and 2024-03-29.
	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	const count = 60

	var shipments []shipment
	counts := make(map[string]int)
	for i := 1; i <= count; i++ {
		s := newShipment(rng, i, start.AddDate(0, 0, rng.Intn(82)))
		sc := pick(rng)
		s.scenario = sc.name
		sc.apply(rng, &s)
		counts[sc.name]++
		shipments = append(shipments, s)
	}

	writeBatchJSON(filepath.Join(baseDir, "batch.json"), shipments)
	writeBatchCSV(filepath.Join(baseDir, "batch.csv"), shipments)

	fmt.Printf("Generated %d LC/invoice pairs -> batch.json, batch.csv\n", len(shipments))
	for _, sc := range scenarios {
		fmt.Printf("  %-22s %d\n", sc.name, counts[sc.name])
	}
}

func newShipment(rng *rand.Rand, n int, issued time.Time) shipment {
	b := beneficiaries[rng.Intn(len(beneficiaries))]
	a := applicants[rng.Intn(len(applicants))]
	g := catalogue[rng.Intn(len(catalogue))]
	r := routes[rng.Intn(len(routes))]

	qty := int64(500+rng.Intn(40)) * 25
	price := decimal.NewFromFloat(g.minPrice + rng.Float64()*(g.maxPrice-g.minPrice)).Round(2)
	total := price.Mul(decimal.NewFromInt(qty))

	latest := issued.AddDate(0, 0, 45+rng.Intn(30))
	ship := latest.AddDate(0, 0, -(3 + rng.Intn(20)))
	freight := currency.Round(total.Mul(decimal.NewFromFloat(0.02+rng.Float64()*0.02)), "USD")

	// Credit amount is the goods value rounded to the nearest hundred.
	lcAmount := total.Round(-2)

	return shipment{
		id:          fmt.Sprintf("GEN-%03d", n),
		lcNumber:    fmt.Sprintf("EXP/2024/%04d", 100+n),
		issueDate:   issued,
		latest:      latest,
		expiry:      latest.AddDate(0, 0, 30),
		applicant:   a,
		beneficiary: b,
		goods:       g,
		quantity:    qty,
		unitPrice:   price,
		lcAmount:    lcAmount,
		route:       r,
		place:       r.discharge,

		invNumber:      fmt.Sprintf("INV/%s/%04d", strings.ToUpper(b.city[:3]), 300+n),
		invDate:        ship.AddDate(0, 0, -2),
		shipDate:       ship,
		invExporter:    fmt.Sprintf("%s, %s", b.name, b.city),
		invDescription: fmt.Sprintf("%s %s %s", quantity(qty), g.unit, g.description),
		invCurrency:    "USD",
		invIncoterm:    "CIF " + r.discharge,
		invDischarge:   r.discharge,
		freight:        freight,
		insurance:      currency.Round(total.Mul(decimal.NewFromFloat(0.0011)), "USD"),
		beneficiaryTag: "Beneficiary",
	}
}

func pick(rng *rand.Rand) scenario {
	roll := rng.Float64()
	acc := 0.0
	for _, sc := range scenarios {
		acc += sc.weight
		if roll < acc {
			return sc
		}
	}
	return scenarios[0]
}

func (s shipment) lc() string {
	lines := []string{
		"IRREVOCABLE DOCUMENTARY CREDIT",
		"LC No: " + s.lcNumber,
		"Issue Date: " + s.issueDate.Format(dateLayout),
		fmt.Sprintf("Applicant: %s, %s", s.applicant.name, s.applicant.city),
		fmt.Sprintf("%s: %s, %s", s.beneficiaryTag, s.beneficiary.name, s.beneficiary.city),
		"Amount: " + currency.Format(s.lcAmount, "USD"),
		"Tolerance: 5/5",
		fmt.Sprintf("Description of Goods: %s %s %s", quantity(s.quantity), s.goods.unit, s.goods.description),
		"Incoterms 2020: CIF " + s.place,
		"Port of Loading: " + s.route.loading,
		"Port of Discharge: " + s.route.discharge,
		"Partial Shipments: Not Allowed",
		"Transshipment: Allowed",
		"Latest Shipment Date: " + s.latest.Format(dateLayout),
		"Expiry Date: " + s.expiry.Format(dateLayout),
	}
	return strings.Join(lines, "\n")
}

func (s shipment) invoice() string {
	total := s.unitPrice.Mul(decimal.NewFromInt(s.quantity))
	lines := []string{
		"COMMERCIAL INVOICE",
		"Invoice No: " + s.invNumber,
		"Invoice Date: " + s.invDate.Format(dateLayout),
		"Exporter: " + s.invExporter,
		fmt.Sprintf("Buyer: %s, %s", s.applicant.name, s.applicant.city),
		"Description of Goods: " + s.invDescription,
		fmt.Sprintf("Quantity: %s %s", quantity(s.quantity), s.goods.unit),
		"Unit Price: " + currency.Format(s.unitPrice, s.invCurrency),
		"Freight: " + currency.Format(s.freight, s.invCurrency),
	}
	if strings.HasPrefix(s.invIncoterm, "CIF") {
		lines = append(lines, "Insurance: "+currency.Format(s.insurance, s.invCurrency))
	}
	lines = append(lines,
		"Total Amount: "+currency.Format(total, s.invCurrency),
		"Incoterms 2020: "+s.invIncoterm,
		"Port of Loading: "+s.route.loading,
		"Port of Discharge: "+s.invDischarge,
		"Shipment Date: "+s.shipDate.Format(dateLayout),
	)
	return strings.Join(lines, "\n")
}

// quantity renders a whole quantity with thousands separators.
func quantity(n int64) string {
	return strings.TrimSuffix(currency.Format(decimal.NewFromInt(n), ""), ".00")
}

func writeBatchJSON(path string, shipments []shipment) {
	type item struct {
		ID       string `json:"id"`
		Scenario string `json:"scenario"`
		LC       string `json:"lc"`
		Invoice  string `json:"invoice"`
	}
	type fileFormat struct {
		BatchID string `json:"batch_id"`
		Items   []item `json:"items"`
	}

	out := fileFormat{BatchID: "GEN-BATCH-042"}
	for _, s := range shipments {
		out.Items = append(out.Items, item{ID: s.id, Scenario: s.scenario, LC: s.lc(), Invoice: s.invoice()})
	}

	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

func writeBatchCSV(path string, shipments []shipment) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"id", "lc", "invoice", "profile", "jurisdiction"})
	for _, s := range shipments {
		w.Write([]string{s.id, s.lc(), s.invoice(), "", ""})
	}
}

func findTestdataDir() string {
	for _, c := range []string{"testdata", "../testdata", "../../testdata"} {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
