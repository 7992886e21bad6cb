package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
)

type Bucket string

const (
	BucketDecade Bucket = "decade"
	BucketYear   Bucket = "year"
)

// EmergingWindow is how far back a publication counts as recent.
const EmergingWindow = 3650 * 24 * time.Hour

const emergingLimit = 10

var ErrBucket = fmt.Errorf("bucket must be one of: %s, %s", BucketDecade, BucketYear)

// ParseBucket defaults to decade; anything else is ErrBucket.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case "", BucketDecade:
		return BucketDecade, nil
	case BucketYear:
		return BucketYear, nil
	default:
		return "", ErrBucket
	}
}

func (b Bucket) period(d models.Date) int {
	if b == BucketYear {
		return d.Year()
	}
	return d.Decade()
}

func (b Bucket) step() int {
	if b == BucketYear {
		return 1
	}
	return 10
}

// Trends builds a gap-free series from the earliest to the latest observed
// period. now anchors the emerging-authors window.
func Trends(c Catalog, bucket Bucket, now time.Time) TrendsReport {
	r := TrendsReport{
		Bucket:          bucket,
		Series:          []SeriesPoint{},
		LanguageTrends:  []LanguageTrend{},
		EmergingAuthors: []EmergingAuthor{},
	}

	periods := map[int]*pageAgg{}
	counts := map[int]int{}
	type langKey struct {
		period int
		dated  bool
		lang   string
	}
	langs := map[langKey]int{}

	for _, b := range c.Books {
		if b.PublicationDate == nil {
			r.Undated++
			langs[langKey{lang: b.Language}]++
			continue
		}
		p := bucket.period(*b.PublicationDate)
		if periods[p] == nil {
			periods[p] = &pageAgg{}
		}
		periods[p].add(b.PageCount)
		counts[p]++
		langs[langKey{p, true, b.Language}]++
	}

	if len(counts) > 0 {
		keys := sortedKeys(counts)
		for p := keys[0]; p <= keys[len(keys)-1]; p += bucket.step() {
			pt := SeriesPoint{Period: p, Count: counts[p]}
			if agg := periods[p]; agg != nil {
				pt.AvgPages = agg.avg()
			}
			r.Series = append(r.Series, pt)
		}
	}

	for k, n := range langs {
		lt := LanguageTrend{Language: k.lang, Count: n}
		if k.dated {
			lt.Period = &k.period
		}
		r.LanguageTrends = append(r.LanguageTrends, lt)
	}
	// undated rows go last
	sort.Slice(r.LanguageTrends, func(i, j int) bool {
		x, y := r.LanguageTrends[i], r.LanguageTrends[j]
		if (x.Period == nil) != (y.Period == nil) {
			return y.Period == nil
		}
		if x.Period != nil && *x.Period != *y.Period {
			return *x.Period < *y.Period
		}
		return x.Language < y.Language
	})

	r.EmergingAuthors = emerging(c, now)
	return r
}

func emerging(c Catalog, now time.Time) []EmergingAuthor {
	cutoff := now.Add(-EmergingWindow)
	cutoff = time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)

	recentBook := make(map[int64]bool, len(c.Books))
	for _, b := range c.Books {
		if b.PublicationDate != nil && !b.PublicationDate.Before(cutoff) {
			recentBook[b.ID] = true
		}
	}

	recent := map[int64]int{}
	total := booksPerAuthor(c.Links)
	for _, l := range c.Links {
		if recentBook[l.BookID] {
			recent[l.AuthorID]++
		}
	}

	out := []EmergingAuthor{}
	for _, a := range c.Authors {
		if recent[a.ID] == 0 {
			continue
		}
		out = append(out, EmergingAuthor{
			ID:               a.ID,
			FullName:         models.FullName(a.FirstName, a.LastName),
			RecentBooksCount: recent[a.ID],
			TotalBooks:       total[a.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecentBooksCount != out[j].RecentBooksCount {
			return out[i].RecentBooksCount > out[j].RecentBooksCount
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > emergingLimit {
		out = out[:emergingLimit]
	}
	return out
}
