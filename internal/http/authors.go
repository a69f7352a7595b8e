package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/authors"
	"github.com/openshelf/openshelf/internal/entities"
)

type AuthorsController struct {
	repo *authors.Repository
}

func NewAuthorsController(repo *authors.Repository) *AuthorsController {
	return &AuthorsController{repo: repo}
}

type authorRequest struct {
	Name        string    `json:"name"`
	Nationality string    `json:"nationality"`
	BirthDate   time.Time `json:"birth_date"`
}

func (ctrl *AuthorsController) List(c *gin.Context) {
	all, err := ctrl.repo.GetAll()
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	respondData(c, http.StatusOK, all)
}

func (ctrl *AuthorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	author, err := ctrl.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, authors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "author not found")
			return
		}
		respondInternalError(c, err, "get author")
		return
	}
	respondData(c, http.StatusOK, author)
}

func (ctrl *AuthorsController) Create(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}

	author := &entities.Author{
		Name:        req.Name,
		Nationality: req.Nationality,
		BirthDate:   req.BirthDate,
	}
	if err := ctrl.repo.Create(author); err != nil {
		respondInternalError(c, err, "create author")
		return
	}
	respondData(c, http.StatusCreated, author)
}

func (ctrl *AuthorsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var birthDate *time.Time
	if !req.BirthDate.IsZero() {
		birthDate = &req.BirthDate
	}

	author, err := ctrl.repo.Update(id, req.Name, req.Nationality, birthDate)
	if err != nil {
		if errors.Is(err, authors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "author not found")
			return
		}
		respondInternalError(c, err, "update author")
		return
	}
	respondData(c, http.StatusOK, author)
}

func (ctrl *AuthorsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := ctrl.repo.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, authors.ErrNotFound):
			respondError(c, http.StatusNotFound, "author not found")
		case errors.Is(err, authors.ErrReferenced):
			respondError(c, http.StatusConflict, "author is referenced by books and cannot be deleted")
		default:
			respondInternalError(c, err, "delete author")
		}
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}
