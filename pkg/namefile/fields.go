package namefile

import (
	"errors"
	"time"
)

// DateLayout is the layout of Fields.Date.
const DateLayout = time.DateOnly

// Fields is the plain form of a Record used for JSON and YAML payloads.
type Fields struct {
	Stem    string   `json:"stem" yaml:"stem"`
	Suffix  string   `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Tags    []string `json:"tags" yaml:"tags"`
	Date    string   `json:"date,omitempty" yaml:"date,omitempty"`
	Version string   `json:"version,omitempty" yaml:"version,omitempty"`
}

// Fields returns the plain form of r. Tags are sorted and the date is
// formatted as YYYY-MM-DD.
func (r Record) Fields() Fields {
	f := Fields{
		Stem:   r.stem,
		Suffix: r.suffix,
		Tags:   r.tags.Sorted(),
	}
	if r.hasDate {
		f.Date = r.date.Format(DateLayout)
	}
	if r.hasVersion {
		f.Version = r.version.String()
	}
	return f
}

// Record builds a Record from f with the same validation as New.
func (f Fields) Record(opts ...Option) (Record, error) {
	base := []Option{WithSuffix(f.Suffix), WithTags(f.Tags...)}
	if f.Date != "" {
		d, err := time.Parse(DateLayout, f.Date)
		if err != nil {
			return Record{}, errors.Join(ErrInvalidRecord, newErr(ErrInvalidDate, "date %q: %v", f.Date, err))
		}
		base = append(base, WithDate(d))
	}
	if f.Version != "" {
		base = append(base, WithVersion(f.Version))
	}
	return New(f.Stem, append(base, opts...)...)
}
