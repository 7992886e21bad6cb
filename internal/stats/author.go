package stats

import (
	"sort"

	"github.com/5w1tchy/library-api/internal/models"
)

const recentBooksLimit = 5

// ForAuthor builds the per-author report from the author's books.
func ForAuthor(a AuthorFact, books []BookFact) AuthorReport {
	r := AuthorReport{
		Author: AuthorRef{
			ID:          a.ID,
			FullName:    models.FullName(a.FirstName, a.LastName),
			Nationality: a.Nationality,
		},
		BooksByLanguage: []LanguageCount{},
		BooksByDecade:   []DecadeCount{},
		RecentBooks:     []RecentBook{},
	}

	var all pageAgg
	langs := map[string]*pageAgg{}
	langCount := map[string]int{}
	decades := map[int]int{}
	undated := 0

	for _, b := range books {
		all.add(b.PageCount)

		if langs[b.Language] == nil {
			langs[b.Language] = &pageAgg{}
		}
		langs[b.Language].add(b.PageCount)
		langCount[b.Language]++

		if b.PublicationDate == nil {
			undated++
			continue
		}
		decades[b.PublicationDate.Decade()]++
		d := *b.PublicationDate
		if r.Statistics.EarliestPublication == nil || d.Before(r.Statistics.EarliestPublication.Time) {
			r.Statistics.EarliestPublication = &d
		}
		if r.Statistics.LatestPublication == nil || d.After(r.Statistics.LatestPublication.Time) {
			r.Statistics.LatestPublication = &d
		}
	}

	r.Statistics.TotalBooks = len(books)
	r.Statistics.AvgPages = all.avg()
	r.Statistics.MinPages = all.minPtr()
	r.Statistics.MaxPages = all.maxPtr()
	r.Statistics.TotalPages = all.total

	for lang, n := range langCount {
		r.BooksByLanguage = append(r.BooksByLanguage, LanguageCount{Language: lang, Count: n, AvgPages: langs[lang].avg()})
	}
	sort.Slice(r.BooksByLanguage, func(i, j int) bool {
		x, y := r.BooksByLanguage[i], r.BooksByLanguage[j]
		if x.Count != y.Count {
			return x.Count > y.Count
		}
		return x.Language < y.Language
	})

	for _, dec := range sortedKeys(decades) {
		d := dec
		r.BooksByDecade = append(r.BooksByDecade, DecadeCount{Decade: &d, Count: decades[dec]})
	}
	if undated > 0 {
		r.BooksByDecade = append(r.BooksByDecade, DecadeCount{Count: undated})
	}

	recent := make([]BookFact, len(books))
	copy(recent, books)
	sort.Slice(recent, func(i, j int) bool { return newerFirst(recent[i], recent[j]) })
	if len(recent) > recentBooksLimit {
		recent = recent[:recentBooksLimit]
	}
	for _, b := range recent {
		r.RecentBooks = append(r.RecentBooks, RecentBook{ID: b.ID, Title: b.Title, PublicationDate: b.PublicationDate})
	}
	return r
}

// newerFirst orders by publication date descending, undated last, then id.
func newerFirst(x, y BookFact) bool {
	switch {
	case x.PublicationDate == nil && y.PublicationDate == nil:
		return x.ID < y.ID
	case x.PublicationDate == nil:
		return false
	case y.PublicationDate == nil:
		return true
	case !x.PublicationDate.Equal(y.PublicationDate.Time):
		return x.PublicationDate.After(y.PublicationDate.Time)
	default:
		return x.ID < y.ID
	}
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
