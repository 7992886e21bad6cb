package stats

// pageAgg accumulates page counts; books without a page count are skipped.
type pageAgg struct {
	n, total int
	min, max int
}

func (a *pageAgg) add(pages *int) {
	if pages == nil {
		return
	}
	p := *pages
	if a.n == 0 || p < a.min {
		a.min = p
	}
	if a.n == 0 || p > a.max {
		a.max = p
	}
	a.n++
	a.total += p
}

// avg is nil when no book had a page count.
func (a pageAgg) avg() *float64 {
	if a.n == 0 {
		return nil
	}
	v := float64(a.total) / float64(a.n)
	return &v
}

func (a pageAgg) minPtr() *int {
	if a.n == 0 {
		return nil
	}
	v := a.min
	return &v
}

func (a pageAgg) maxPtr() *int {
	if a.n == 0 {
		return nil
	}
	v := a.max
	return &v
}

const (
	RangeShort    = "short"
	RangeMedium   = "medium"
	RangeLong     = "long"
	RangeVeryLong = "very_long"
	RangeUnknown  = "unknown"
)

var pageRanges = []string{RangeShort, RangeMedium, RangeLong, RangeVeryLong, RangeUnknown}

func pageRange(pages *int) string {
	switch {
	case pages == nil:
		return RangeUnknown
	case *pages < 100:
		return RangeShort
	case *pages < 300:
		return RangeMedium
	case *pages < 500:
		return RangeLong
	default:
		return RangeVeryLong
	}
}
