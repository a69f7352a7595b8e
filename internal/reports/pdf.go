// Package reports renders the administrative PDF exports: the book, reader
// and loan listings plus a statistics summary.
package reports

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/openshelf/openshelf/internal/entities"
)

const dateLayout = "02/01/2006"

// Stats holds the totals shown on the statistics report.
type Stats struct {
	Books     int64 `json:"books"`
	Readers   int64 `json:"readers"`
	Loans     int64 `json:"loans"`
	OpenLoans int64 `json:"open_loans"`
}

// Generator renders PDF reports.
type Generator struct {
	libraryName string
}

// NewGenerator creates a report generator. libraryName is printed in the
// footer of every report.
func NewGenerator(libraryName string) *Generator {
	return &Generator{libraryName: libraryName}
}

// BooksReport renders the book listing with authors and availability.
func (g *Generator) BooksReport(books []entities.Book) ([]byte, error) {
	pdf := g.newPage("Book Inventory")

	widths := []float64{70, 50, 30, 25}
	g.tableHeader(pdf, widths, []string{"Title", "Author(s)", "Published", "Available"})

	pdf.SetFont("Helvetica", "", 10)
	for _, book := range books {
		names := make([]string, 0, len(book.Authors))
		for _, a := range book.Authors {
			names = append(names, a.Name)
		}
		available := "No"
		if book.Available {
			available = "Yes"
		}
		g.tableRow(pdf, widths, []string{
			book.Title,
			strings.Join(names, ", "),
			book.PublicationDate.Format(dateLayout),
			available,
		})
	}

	return g.render(pdf)
}

// ReadersReport renders the reader listing.
func (g *Generator) ReadersReport(readers []entities.Reader) ([]byte, error) {
	pdf := g.newPage("Registered Readers")

	widths := []float64{60, 75, 40}
	g.tableHeader(pdf, widths, []string{"Name", "Email", "Registered"})

	pdf.SetFont("Helvetica", "", 10)
	for _, reader := range readers {
		g.tableRow(pdf, widths, []string{
			reader.Name,
			reader.Email,
			reader.RegistrationDate.Format(dateLayout),
		})
	}

	return g.render(pdf)
}

// LoansReport renders the loan listing with reader and book resolved.
func (g *Generator) LoansReport(loans []entities.Loan) ([]byte, error) {
	pdf := g.newPage("Loan History")

	widths := []float64{50, 55, 35, 35}
	g.tableHeader(pdf, widths, []string{"Reader", "Book", "Checked out", "Returned"})

	pdf.SetFont("Helvetica", "", 10)
	for _, loan := range loans {
		returned := "-"
		if loan.ReturnDate != nil {
			returned = loan.ReturnDate.Format(dateLayout)
		}
		g.tableRow(pdf, widths, []string{
			loan.Reader.Name,
			loan.Book.Title,
			loan.CheckoutDate.Format(dateLayout),
			returned,
		})
	}

	return g.render(pdf)
}

// StatsReport renders the totals summary.
func (g *Generator) StatsReport(stats Stats) ([]byte, error) {
	pdf := g.newPage("Library Statistics")

	lines := []struct {
		label string
		value int64
	}{
		{"Total books", stats.Books},
		{"Total readers", stats.Readers},
		{"Total loans", stats.Loans},
		{"Open loans", stats.OpenLoans},
	}

	pdf.Ln(6)
	for _, line := range lines {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(60, 10, line.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 13)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d", line.value), "", 1, "L", false, 0, "")
	}

	return g.render(pdf)
}

func (g *Generator) newPage(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		footer := fmt.Sprintf("Generated %s - %s", time.Now().Format(dateLayout), g.libraryName)
		pdf.CellFormat(0, 10, footer, "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf
}

func (g *Generator) tableHeader(pdf *fpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 11)
	for i, label := range labels {
		pdf.CellFormat(widths[i], 8, label, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func (g *Generator) tableRow(pdf *fpdf.Fpdf, widths []float64, cells []string) {
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func (g *Generator) render(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
