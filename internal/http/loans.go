package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/circulation"
	"github.com/openshelf/openshelf/internal/database/loans"
)

type LoansController struct {
	repo    *loans.Repository
	service *circulation.Service
}

func NewLoansController(repo *loans.Repository, service *circulation.Service) *LoansController {
	return &LoansController{repo: repo, service: service}
}

type checkoutRequest struct {
	ReaderID       uint   `json:"reader_id"`
	BookID         uint   `json:"book_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (ctrl *LoansController) List(c *gin.Context) {
	all, err := ctrl.repo.GetAll()
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}
	respondData(c, http.StatusOK, all)
}

func (ctrl *LoansController) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	loan, err := ctrl.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, loans.ErrNotFound) {
			respondError(c, http.StatusNotFound, "loan not found")
			return
		}
		respondInternalError(c, err, "get loan")
		return
	}
	respondData(c, http.StatusOK, loan)
}

// Checkout opens a loan. The availability check and the loan creation are
// atomic, so two concurrent requests for the last copy cannot both succeed.
func (ctrl *LoansController) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	loan, err := ctrl.service.Checkout(req.ReaderID, req.BookID, req.IdempotencyKey)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, loan)
}

func (ctrl *LoansController) Return(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	loan, err := ctrl.service.Return(id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, loan)
}
