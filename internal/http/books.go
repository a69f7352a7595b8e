package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
)

type BooksController struct {
	repo *books.Repository
}

func NewBooksController(repo *books.Repository) *BooksController {
	return &BooksController{repo: repo}
}

type bookRequest struct {
	Title           string    `json:"title"`
	PublicationDate time.Time `json:"publication_date"`
	AuthorIDs       []uint    `json:"author_ids"`
}

func (ctrl *BooksController) List(c *gin.Context) {
	all, err := ctrl.repo.GetAll()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	respondData(c, http.StatusOK, all)
}

func (ctrl *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	book, err := ctrl.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondError(c, http.StatusNotFound, "book not found")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	respondData(c, http.StatusOK, book)
}

func (ctrl *BooksController) Create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(c, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.AuthorIDs) == 0 {
		respondError(c, http.StatusBadRequest, "at least one author is required")
		return
	}

	book := &entities.Book{
		Title:           req.Title,
		PublicationDate: req.PublicationDate,
		Available:       true,
	}
	if err := ctrl.repo.Create(book, req.AuthorIDs); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := ctrl.repo.GetByID(book.ID)
	if err != nil {
		respondInternalError(c, err, "reload created book")
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (ctrl *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var pubDate *time.Time
	if !req.PublicationDate.IsZero() {
		pubDate = &req.PublicationDate
	}

	book, err := ctrl.repo.Update(id, req.Title, pubDate, req.AuthorIDs)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondError(c, http.StatusNotFound, "book not found")
			return
		}
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondData(c, http.StatusOK, book)
}

func (ctrl *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := ctrl.repo.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, books.ErrNotFound):
			respondError(c, http.StatusNotFound, "book not found")
		case errors.Is(err, books.ErrReferenced):
			respondError(c, http.StatusConflict, "book has loan history and cannot be deleted")
		default:
			respondInternalError(c, err, "delete book")
		}
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}
