package invoice

import (
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF writes inv as a single-page A4 PDF: a title with the invoice
// id, the date, one row per line item and the grand total.
func RenderPDF(inv *Invoice, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 18)
	pdf.Text(14, 20, "Invoice "+inv.ID)
	pdf.SetFontSize(11)
	pdf.Text(14, 28, "Date: "+inv.Date.Format("2006-01-02 15:04:05")+" UTC")

	pdf.SetFontSize(10)
	y := 40.0
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(14, y, "Product")
	pdf.Text(80, y, "Qty")
	pdf.Text(100, y, "Unit price")
	pdf.Text(140, y, "Total")
	pdf.SetFont("Helvetica", "", 10)
	y += 6

	for _, l := range inv.Items {
		name := l.ProductName
		if len(name) > 35 {
			name = name[:35]
		}
		pdf.Text(14, y, name)
		pdf.Text(80, y, strconv.FormatInt(l.Quantity, 10))
		pdf.Text(100, y, l.UnitPrice.StringFixed(2))
		pdf.Text(140, y, l.LineTotal.StringFixed(2))
		y += 6
	}

	y += 4
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(14, y, "Total: "+inv.Total.StringFixed(2))

	return pdf.Output(w)
}
