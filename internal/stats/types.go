// Package stats computes catalog statistics as pure functions over fact rows.
package stats

import "github.com/5w1tchy/library-api/internal/models"

type BookFact struct {
	ID              int64
	Title           string
	PublicationDate *models.Date
	PageCount       *int
	Language        string
}

type AuthorFact struct {
	ID          int64
	FirstName   string
	LastName    string
	Nationality string
}

type Link struct {
	AuthorID int64
	BookID   int64
}

// Catalog is a snapshot of everything the global reports need.
type Catalog struct {
	Books   []BookFact
	Authors []AuthorFact
	Links   []Link
}

// Per-author report.

type AuthorRef struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Nationality string `json:"nationality"`
}

type AuthorSummary struct {
	TotalBooks          int          `json:"total_books"`
	AvgPages            *float64     `json:"avg_pages"`
	MaxPages            *int         `json:"max_pages"`
	MinPages            *int         `json:"min_pages"`
	TotalPages          int          `json:"total_pages"`
	EarliestPublication *models.Date `json:"earliest_publication"`
	LatestPublication   *models.Date `json:"latest_publication"`
}

type LanguageCount struct {
	Language string   `json:"language"`
	Count    int      `json:"count"`
	AvgPages *float64 `json:"avg_pages"`
}

type DecadeCount struct {
	Decade *int `json:"decade"`
	Count  int  `json:"count"`
}

type RecentBook struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	PublicationDate *models.Date `json:"publication_date"`
}

type AuthorReport struct {
	Author          AuthorRef       `json:"author"`
	Statistics      AuthorSummary   `json:"statistics"`
	BooksByLanguage []LanguageCount `json:"books_by_language"`
	BooksByDecade   []DecadeCount   `json:"books_by_decade"`
	RecentBooks     []RecentBook    `json:"recent_books"`
}

// Global report.

type GeneralSummary struct {
	TotalBooks     int      `json:"total_books"`
	AvgPages       *float64 `json:"avg_pages"`
	MaxPages       *int     `json:"max_pages"`
	MinPages       *int     `json:"min_pages"`
	TotalPages     int      `json:"total_pages"`
	BooksWithPages int      `json:"books_with_pages"`
}

type LanguageTotals struct {
	Language   string   `json:"language"`
	Count      int      `json:"count"`
	AvgPages   *float64 `json:"avg_pages"`
	TotalPages int      `json:"total_pages"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type PageRangeCount struct {
	PageRange string `json:"page_range"`
	Count     int    `json:"count"`
}

type ProlificAuthor struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	BooksCount int    `json:"books_count"`
}

type GlobalReport struct {
	General             GeneralSummary   `json:"general_statistics"`
	ByLanguage          []LanguageTotals `json:"statistics_by_language"`
	ByDecade            []DecadeCount    `json:"statistics_by_decade"`
	ByYear              []YearCount      `json:"statistics_by_year"`
	ByPageRange         []PageRangeCount `json:"books_by_page_range"`
	MostProlificAuthors []ProlificAuthor `json:"most_prolific_authors"`
}

// Trends report.

type SeriesPoint struct {
	Period   int      `json:"period"`
	Count    int      `json:"count"`
	AvgPages *float64 `json:"avg_pages"`
}

// LanguageTrend has a nil Period for undated books.
type LanguageTrend struct {
	Period   *int   `json:"period"`
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type EmergingAuthor struct {
	ID               int64  `json:"id"`
	FullName         string `json:"full_name"`
	RecentBooksCount int    `json:"recent_books_count"`
	TotalBooks       int    `json:"total_books"`
}

type TrendsReport struct {
	Bucket          Bucket           `json:"bucket"`
	Series          []SeriesPoint    `json:"series"`
	Undated         int              `json:"undated"`
	LanguageTrends  []LanguageTrend  `json:"language_trends"`
	EmergingAuthors []EmergingAuthor `json:"emerging_authors"`
}
