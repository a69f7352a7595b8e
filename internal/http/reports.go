package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/readers"
	"github.com/openshelf/openshelf/internal/reports"
)

type ReportsController struct {
	generator *reports.Generator
	books     *books.Repository
	readers   *readers.Repository
	loans     *loans.Repository
}

func NewReportsController(generator *reports.Generator, booksRepo *books.Repository, readersRepo *readers.Repository, loansRepo *loans.Repository) *ReportsController {
	return &ReportsController{
		generator: generator,
		books:     booksRepo,
		readers:   readersRepo,
		loans:     loansRepo,
	}
}

func (ctrl *ReportsController) Books(c *gin.Context) {
	all, err := ctrl.books.GetAll()
	if err != nil {
		respondInternalError(c, err, "books report")
		return
	}
	pdf, err := ctrl.generator.BooksReport(all)
	if err != nil {
		respondInternalError(c, err, "books report")
		return
	}
	ctrl.sendPDF(c, "books.pdf", pdf)
}

func (ctrl *ReportsController) Readers(c *gin.Context) {
	all, err := ctrl.readers.GetAll()
	if err != nil {
		respondInternalError(c, err, "readers report")
		return
	}
	pdf, err := ctrl.generator.ReadersReport(all)
	if err != nil {
		respondInternalError(c, err, "readers report")
		return
	}
	ctrl.sendPDF(c, "readers.pdf", pdf)
}

func (ctrl *ReportsController) Loans(c *gin.Context) {
	all, err := ctrl.loans.GetAll()
	if err != nil {
		respondInternalError(c, err, "loans report")
		return
	}
	pdf, err := ctrl.generator.LoansReport(all)
	if err != nil {
		respondInternalError(c, err, "loans report")
		return
	}
	ctrl.sendPDF(c, "loans.pdf", pdf)
}

func (ctrl *ReportsController) Stats(c *gin.Context) {
	stats, err := ctrl.collectStats()
	if err != nil {
		respondInternalError(c, err, "stats report")
		return
	}
	pdf, err := ctrl.generator.StatsReport(stats)
	if err != nil {
		respondInternalError(c, err, "stats report")
		return
	}
	ctrl.sendPDF(c, "stats.pdf", pdf)
}

func (ctrl *ReportsController) collectStats() (reports.Stats, error) {
	var stats reports.Stats
	var err error

	if stats.Books, err = ctrl.books.Count(); err != nil {
		return stats, err
	}
	if stats.Readers, err = ctrl.readers.Count(); err != nil {
		return stats, err
	}
	if stats.Loans, err = ctrl.loans.Count(); err != nil {
		return stats, err
	}
	if stats.OpenLoans, err = ctrl.loans.CountOpen(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (ctrl *ReportsController) sendPDF(c *gin.Context, filename string, content []byte) {
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", content)
}
