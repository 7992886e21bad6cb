package models

import "time"

type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	PublicationDate *Date     `json:"publication_date"`
	Description     string    `json:"description"`
	PageCount       *int      `json:"page_count"`
	Language        string    `json:"language"`
	LanguageDisplay string    `json:"language_display"`
	Authors         []Author  `json:"authors"`
	AuthorsCount    int       `json:"authors_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
