package stats

import "sort"

const (
	yearsLimit    = 20
	prolificLimit = 10
)

// Global builds the catalog-wide report. An empty catalog yields zeros,
// nulls and empty lists.
func Global(c Catalog) GlobalReport {
	r := GlobalReport{
		ByLanguage:          []LanguageTotals{},
		ByDecade:            []DecadeCount{},
		ByYear:              []YearCount{},
		ByPageRange:         []PageRangeCount{},
		MostProlificAuthors: []ProlificAuthor{},
	}

	var all pageAgg
	langs := map[string]*pageAgg{}
	langCount := map[string]int{}
	decades := map[int]int{}
	years := map[int]int{}
	ranges := map[string]int{}

	for _, b := range c.Books {
		all.add(b.PageCount)
		if langs[b.Language] == nil {
			langs[b.Language] = &pageAgg{}
		}
		langs[b.Language].add(b.PageCount)
		langCount[b.Language]++
		ranges[pageRange(b.PageCount)]++
		if b.PublicationDate != nil {
			decades[b.PublicationDate.Decade()]++
			years[b.PublicationDate.Year()]++
		}
	}

	r.General = GeneralSummary{
		TotalBooks:     len(c.Books),
		AvgPages:       all.avg(),
		MaxPages:       all.maxPtr(),
		MinPages:       all.minPtr(),
		TotalPages:     all.total,
		BooksWithPages: all.n,
	}

	for lang, n := range langCount {
		agg := langs[lang]
		r.ByLanguage = append(r.ByLanguage, LanguageTotals{Language: lang, Count: n, AvgPages: agg.avg(), TotalPages: agg.total})
	}
	sort.Slice(r.ByLanguage, func(i, j int) bool {
		x, y := r.ByLanguage[i], r.ByLanguage[j]
		if x.Count != y.Count {
			return x.Count > y.Count
		}
		return x.Language < y.Language
	})

	for _, dec := range sortedKeys(decades) {
		d := dec
		r.ByDecade = append(r.ByDecade, DecadeCount{Decade: &d, Count: decades[dec]})
	}

	ys := sortedKeys(years)
	for i := len(ys) - 1; i >= 0 && len(r.ByYear) < yearsLimit; i-- {
		r.ByYear = append(r.ByYear, YearCount{Year: ys[i], Count: years[ys[i]]})
	}

	for _, name := range pageRanges {
		if n := ranges[name]; n > 0 {
			r.ByPageRange = append(r.ByPageRange, PageRangeCount{PageRange: name, Count: n})
		}
	}

	r.MostProlificAuthors = prolific(c)
	return r
}

func prolific(c Catalog) []ProlificAuthor {
	counts := booksPerAuthor(c.Links)
	out := make([]ProlificAuthor, 0, len(c.Authors))
	for _, a := range c.Authors {
		out = append(out, ProlificAuthor{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, BooksCount: counts[a.ID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BooksCount != out[j].BooksCount {
			return out[i].BooksCount > out[j].BooksCount
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > prolificLimit {
		out = out[:prolificLimit]
	}
	return out
}

func booksPerAuthor(links []Link) map[int64]int {
	m := make(map[int64]int)
	for _, l := range links {
		m[l.AuthorID]++
	}
	return m
}
