// Package authors is the SQL store for catalog authors.
package authors

import (
	"errors"

	"github.com/5w1tchy/library-api/internal/models"
)

var ErrNotFound = errors.New("author not found")

// Input is the full write payload (POST, PUT).
type Input struct {
	FirstName   string       `json:"first_name" validate:"required,max=100"`
	LastName    string       `json:"last_name" validate:"required,max=100"`
	BirthDate   *models.Date `json:"birth_date"`
	Nationality string       `json:"nationality" validate:"max=100"`
	Biography   string       `json:"biography"`
}

// Patch is the partial write payload (PATCH).
type Patch struct {
	FirstName   models.Field[string]       `json:"first_name"`
	LastName    models.Field[string]       `json:"last_name"`
	BirthDate   models.Field[*models.Date] `json:"birth_date"`
	Nationality models.Field[string]       `json:"nationality"`
	Biography   models.Field[string]       `json:"biography"`
}

// detailBooks caps the books embedded in the author detail view.
const detailBooks = 10
