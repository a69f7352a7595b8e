package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/readers"
	"github.com/openshelf/openshelf/internal/entities"
)

type ReadersController struct {
	repo *readers.Repository
}

func NewReadersController(repo *readers.Repository) *ReadersController {
	return &ReadersController{repo: repo}
}

type readerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (ctrl *ReadersController) List(c *gin.Context) {
	all, err := ctrl.repo.GetAll()
	if err != nil {
		respondInternalError(c, err, "list readers")
		return
	}
	respondData(c, http.StatusOK, all)
}

func (ctrl *ReadersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	reader, err := ctrl.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, readers.ErrNotFound) {
			respondError(c, http.StatusNotFound, "reader not found")
			return
		}
		respondInternalError(c, err, "get reader")
		return
	}
	respondData(c, http.StatusOK, reader)
}

func (ctrl *ReadersController) Create(c *gin.Context) {
	var req readerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(c, http.StatusBadRequest, "name and email are required")
		return
	}

	reader := &entities.Reader{
		Name:  req.Name,
		Email: req.Email,
	}
	if err := ctrl.repo.Create(reader); err != nil {
		if errors.Is(err, readers.ErrEmailExists) {
			respondError(c, http.StatusConflict, "reader email already registered")
			return
		}
		respondInternalError(c, err, "create reader")
		return
	}
	respondData(c, http.StatusCreated, reader)
}

func (ctrl *ReadersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req readerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	reader, err := ctrl.repo.Update(id, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, readers.ErrNotFound):
			respondError(c, http.StatusNotFound, "reader not found")
		case errors.Is(err, readers.ErrEmailExists):
			respondError(c, http.StatusConflict, "reader email already registered")
		default:
			respondInternalError(c, err, "update reader")
		}
		return
	}
	respondData(c, http.StatusOK, reader)
}

func (ctrl *ReadersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := ctrl.repo.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, readers.ErrNotFound):
			respondError(c, http.StatusNotFound, "reader not found")
		case errors.Is(err, readers.ErrReferenced):
			respondError(c, http.StatusConflict, "reader has loan history and cannot be deleted")
		default:
			respondInternalError(c, err, "delete reader")
		}
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}
