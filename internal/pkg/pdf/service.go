// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/pkg/money"
)

// Service renders order receipts
type Service struct {
	company config.CompanyConfig
	format  money.Formatter
	now     func() time.Time
}

// NewService creates a new PDF service
func NewService(company config.CompanyConfig, display config.DisplayConfig) *Service {
	return &Service{
		company: company,
		format:  money.NewFormatter(display.Locale, display.Currency),
		now:     time.Now,
	}
}

// ReceiptLine is one row of the receipt table
type ReceiptLine struct {
	Name      string
	Quantity  string
	UnitPrice string
	Total     string
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	IssuedAt      string
	OrderDate     string
	Status        string
	Address       order.ShippingAddress
	Lines         []ReceiptLine
	ItemCount     string
	Total         string
	Company       config.CompanyConfig
	RightToLeft   bool
}

var receiptTemplate = template.Must(template.New("receipt").Parse(receiptHTML))

// RenderReceiptHTML renders the receipt page for an order
func (s *Service) RenderReceiptHTML(o *order.Order) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, s.receiptData(o)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GenerateReceipt renders the receipt of an order as a PDF
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderReceiptHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.Encoding.Set("utf-8")
	page.FooterCenter.Set("[page]/[topage]")
	page.FooterFontSize.Set(8)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) receiptData(o *order.Order) ReceiptData {
	data := ReceiptData{
		ReceiptNumber: "RCPT-" + o.ShortID(),
		IssuedAt:      s.now().Format("2006-01-02 15:04"),
		Status:        o.Status.Label(),
		Address:       o.ShippingAddress,
		Lines:         make([]ReceiptLine, 0, len(o.Items)),
		ItemCount:     s.format.Quantity(o.ItemCount()),
		Total:         s.format.Price(o.TotalAmount),
		Company:       s.company,
		RightToLeft:   s.format.Locale == "fa" || s.format.Locale == "ar",
	}
	if !o.CreatedAt.IsZero() {
		data.OrderDate = o.CreatedAt.Format("2006-01-02")
	}

	for i := range o.Items {
		item := &o.Items[i]
		name := item.ProductID
		if item.Product != nil && item.Product.Name != "" {
			name = item.Product.Name
		}
		data.Lines = append(data.Lines, ReceiptLine{
			Name:      name,
			Quantity:  s.format.Quantity(item.Quantity),
			UnitPrice: s.format.Price(item.UnitPrice),
			Total:     s.format.Price(item.LineTotal()),
		})
	}
	return data
}

const receiptHTML = `<!DOCTYPE html>
<html{{if .RightToLeft}} dir="rtl"{{end}}>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Tahoma, Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 16px; margin-bottom: 24px; }
        .title { font-size: 24px; font-weight: bold; color: #2563eb; }
        .section-title { font-size: 15px; font-weight: bold; margin: 16px 0 8px; color: #374151; }
        .items { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
        .items th, .items td { border: 1px solid #ddd; padding: 8px; }
        .items th { background-color: #f8f9fa; }
        .num { text-align: center; }
        .total-row { font-size: 17px; font-weight: bold; }
        .footer { margin-top: 40px; border-top: 1px solid #eee; padding-top: 12px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Company.Name}}</h1>
        {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
        {{if .Company.Phone}}<p>{{.Company.Phone}}</p>{{end}}
        <div class="title">Receipt {{.ReceiptNumber}}</div>
        <p>Issued: {{.IssuedAt}}</p>
        {{if .OrderDate}}<p>Order date: {{.OrderDate}}</p>{{end}}
        <p>Status: {{.Status}}</p>
    </div>

    <div class="section-title">Ship to</div>
    <p>{{.Address.Province}}, {{.Address.City}}</p>
    <p>{{.Address.Street}}</p>
    <p>{{.Address.PostalCode}} | {{.Address.Phone}}</p>

    <table class="items">
        <thead>
            <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Total}}</td></tr>
            {{end}}
        </tbody>
    </table>

    <p>Items: {{.ItemCount}}</p>
    <p class="total-row">Total: {{.Total}}</p>

    <div class="footer">
        <p>Thank you for your purchase!</p>
        {{if .Company.Email}}<p>Questions? Contact us at {{.Company.Email}}</p>{{end}}
        {{if .Company.Website}}<p>{{.Company.Website}}</p>{{end}}
    </div>
</body>
</html>
`
