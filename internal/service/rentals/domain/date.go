// internal/service/rentals/domain/date.go

package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day. Rental dates serialise as YYYY-MM-DD on the wire;
// the intra-day time component is kept internally so same-day returns never
// accrue a fee.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{t}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(raw []byte) error {
	s := strings.Trim(string(raw), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
