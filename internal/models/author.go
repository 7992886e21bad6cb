package models

import "time"

type Author struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	BirthDate   *Date     `json:"birth_date"`
	Nationality string    `json:"nationality"`
	Biography   string    `json:"biography"`
	BooksCount  int       `json:"books_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuthorDetail is the single-author shape, with a bounded list of books.
type AuthorDetail struct {
	Author
	Books []AuthorBook `json:"books"`
}

type AuthorBook struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	PublicationDate *Date  `json:"publication_date"`
	Language        string `json:"language"`
}

func FullName(first, last string) string {
	return first + " " + last
}
