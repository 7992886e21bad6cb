package authors

import (
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/5w1tchy/library-api/internal/validate"
)

// sanitize normalizes text fields in place and validates the result.
func sanitize(in *Input, now time.Time) error {
	in.FirstName = shared.Line(in.FirstName)
	in.LastName = shared.Line(in.LastName)
	in.Nationality = shared.Line(in.Nationality)
	in.Biography = shared.Text(in.Biography)

	var errs validate.Errors
	if err := validate.Struct(in); err != nil {
		fe, ok := validate.Fields(err)
		if !ok {
			return err
		}
		errs = fe
	}
	if in.BirthDate != nil && in.BirthDate.After(now) {
		errs.Add("birth_date", "future", "birth date cannot be in the future")
	}
	return errs.Err()
}

// apply merges p over cur. Nulls on non-nullable fields are rejected.
func (p Patch) apply(cur Input) (Input, error) {
	var errs validate.Errors
	str := func(name string, f models.Field[string], dst *string) {
		if !f.Set {
			return
		}
		if f.Null {
			errs.Add(name, "null", "this field may not be null")
			return
		}
		*dst = f.V
	}
	str("first_name", p.FirstName, &cur.FirstName)
	str("last_name", p.LastName, &cur.LastName)
	str("nationality", p.Nationality, &cur.Nationality)
	str("biography", p.Biography, &cur.Biography)
	if p.BirthDate.Set {
		cur.BirthDate = p.BirthDate.V
		if p.BirthDate.Null {
			cur.BirthDate = nil
		}
	}
	return cur, errs.Err()
}
