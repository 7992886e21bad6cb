// Package books is the SQL store for catalog books and their author links.
package books

import (
	"errors"

	"github.com/5w1tchy/library-api/internal/models"
)

var ErrNotFound = errors.New("book not found")

// Input is the full write payload (POST, PUT). A nil AuthorIDs leaves
// existing links untouched on PUT.
type Input struct {
	Title           string       `json:"title" validate:"required,max=250"`
	PublicationDate *models.Date `json:"publication_date"`
	Description     string       `json:"description"`
	PageCount       *int         `json:"page_count" validate:"omitempty,gte=0,lte=2147483647"`
	Language        string       `json:"language" validate:"omitempty,oneof=es en fr ge pt other"`
	AuthorIDs       *[]int64     `json:"authors_ids"`
}

type Patch struct {
	Title           models.Field[string]       `json:"title"`
	PublicationDate models.Field[*models.Date] `json:"publication_date"`
	Description     models.Field[string]       `json:"description"`
	PageCount       models.Field[*int]         `json:"page_count"`
	Language        models.Field[string]       `json:"language"`
	AuthorIDs       models.Field[[]int64]      `json:"authors_ids"`
}
