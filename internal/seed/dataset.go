// Package seed generates, loads and exports catalog datasets.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/5w1tchy/library-api/internal/models"
)

// Dataset is the portable catalog format. Book.Authors holds indexes into
// Authors.
type Dataset struct {
	Authors []AuthorRecord `json:"authors"`
	Books   []BookRecord   `json:"books"`
}

type AuthorRecord struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	BirthDate   *models.Date `json:"birth_date,omitempty"`
	Nationality string       `json:"nationality,omitempty"`
	Biography   string       `json:"biography,omitempty"`
}

type BookRecord struct {
	Title           string       `json:"title"`
	PublicationDate *models.Date `json:"publication_date,omitempty"`
	Description     string       `json:"description,omitempty"`
	PageCount       *int         `json:"page_count,omitempty"`
	Language        string       `json:"language,omitempty"`
	Authors         []int        `json:"authors"`
}

// Decode reads a dataset and checks that every author index resolves.
func Decode(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	for i, b := range ds.Books {
		for _, ref := range b.Authors {
			if ref < 0 || ref >= len(ds.Authors) {
				return Dataset{}, fmt.Errorf("book %d (%q): author index %d out of range", i, b.Title, ref)
			}
		}
	}
	return ds, nil
}

func Encode(w io.Writer, ds Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ds)
}

// Summary is what a load reports back.
type Summary struct {
	AuthorsCreated      int
	BooksCreated        int
	TotalAuthors        int
	TotalBooks          int
	BooksWithoutAuthors int
}

// Counter reads catalog totals after a load.
type Counter interface {
	Counts(ctx context.Context) (authors, books, orphans int, err error)
}
