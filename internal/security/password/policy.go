package password

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const MinLen = 8

var ErrTooShort = errors.New("password must be at least 8 characters")

// Strength is a 0..4 score with a short hint when the score is low.
type Strength struct {
	Score int
	Hint  string
}

// Check trims pwd, rejects it below MinLen and scores the rest.
// A password containing one of hints (e.g. the username) scores lower.
func Check(pwd string, hints ...string) (string, Strength, error) {
	pwd = strings.TrimSpace(pwd)
	if utf8.RuneCountInString(pwd) < MinLen {
		return pwd, Strength{}, ErrTooShort
	}
	return pwd, score(pwd, hints...), nil
}

func score(pwd string, hints ...string) Strength {
	l := utf8.RuneCountInString(pwd)
	var hasL, hasU, hasD, hasS bool
	for _, r := range pwd {
		switch {
		case r >= 'a' && r <= 'z':
			hasL = true
		case r >= 'A' && r <= 'Z':
			hasU = true
		case r >= '0' && r <= '9':
			hasD = true
		default:
			hasS = true
		}
	}
	classes := 0
	for _, b := range []bool{hasL, hasU, hasD, hasS} {
		if b {
			classes++
		}
	}
	lower := strings.ToLower(pwd)
	for _, h := range hints {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && strings.Contains(lower, h) && l < 16 {
			if classes > 1 {
				classes--
			}
			break
		}
	}
	switch {
	case l >= 14 && classes >= 3:
		return Strength{Score: 4}
	case l >= 12 && classes >= 3:
		return Strength{Score: 3}
	case l >= 10 && classes >= 2:
		return Strength{Score: 2, Hint: "add length and mix letters, numbers and symbols"}
	default:
		return Strength{Score: 1, Hint: "use at least 12 characters with mixed character types"}
	}
}
