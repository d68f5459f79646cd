package namefile

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
)

// Record is the structured identity of a file: stem, suffix, tags, and an
// optional date and version. Records are immutable; use Derive to obtain a
// modified copy.
type Record struct {
	stem       string
	suffix     string
	tags       TagSet
	date       time.Time
	hasDate    bool
	version    Version
	hasVersion bool
}

// Option configures a Record under construction.
type Option func(*builder)

type builder struct {
	stem       string
	suffix     string
	tags       []string
	date       time.Time
	hasDate    bool
	today      bool
	clock      clock.Clock
	version    Version
	hasVersion bool
	versionErr error
}

// WithStem replaces the stem. It is mostly useful with Derive.
func WithStem(stem string) Option {
	return func(b *builder) {
		b.stem = stem
	}
}

// WithSuffix sets the suffix. A single leading '.' is dropped; an empty
// suffix means the name has no extension.
func WithSuffix(suffix string) Option {
	return func(b *builder) {
		b.suffix = strings.TrimPrefix(suffix, segmentSep)
	}
}

// WithTags adds tags to the record.
func WithTags(tags ...string) Option {
	return func(b *builder) {
		b.tags = append(b.tags, tags...)
	}
}

// WithoutTags removes every tag.
func WithoutTags() Option {
	return func(b *builder) {
		b.tags = nil
	}
}

// WithDate sets the date. Only the calendar date of t is kept.
func WithDate(t time.Time) Option {
	return func(b *builder) {
		b.date, b.hasDate, b.today = t, true, false
	}
}

// WithToday sets the date to the current day, read once from the clock when
// the record is built.
func WithToday() Option {
	return func(b *builder) {
		b.today, b.hasDate = true, true
	}
}

// WithoutDate removes the date.
func WithoutDate() Option {
	return func(b *builder) {
		b.date, b.hasDate, b.today = time.Time{}, false, false
	}
}

// WithClock sets the clock read by WithToday.
func WithClock(c clock.Clock) Option {
	return func(b *builder) {
		b.clock = c
	}
}

// WithVersion parses s and sets it as the version.
func WithVersion(s string) Option {
	return func(b *builder) {
		v, err := ParseVersion(s)
		b.version, b.hasVersion, b.versionErr = v, err == nil, err
	}
}

// WithVersionValue sets an already parsed version. A zero Version removes
// the version.
func WithVersionValue(v Version) Option {
	return func(b *builder) {
		b.version, b.hasVersion, b.versionErr = v, !v.IsZero(), nil
	}
}

// WithoutVersion removes the version.
func WithoutVersion() Option {
	return WithVersionValue(Version{})
}

// New builds a Record. Reserved characters ('-', '.', '/' and whitespace) in
// the stem and tags are replaced with '_'. It fails with ErrInvalidRecord if
// the stem or a tag is empty or not valid UTF-8, the suffix cannot be told apart from a date or
// version, or the version is malformed.
func New(stem string, opts ...Option) (Record, error) {
	b := &builder{stem: stem}
	for _, opt := range opts {
		opt(b)
	}
	return b.build()
}

// Name builds a Record and returns its canonical string.
func Name(stem string, opts ...Option) (string, error) {
	r, err := New(stem, opts...)
	if err != nil {
		return "", err
	}
	return Encode(r)
}

// Derive returns a new Record with opts applied on top of r.
func (r Record) Derive(opts ...Option) (Record, error) {
	b := &builder{
		stem:       r.stem,
		suffix:     r.suffix,
		tags:       r.tags.Sorted(),
		date:       r.date,
		hasDate:    r.hasDate,
		version:    r.version,
		hasVersion: r.hasVersion,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b.build()
}

func (b *builder) build() (Record, error) {
	if b.versionErr != nil {
		return Record{}, errors.Join(ErrInvalidRecord, b.versionErr)
	}
	if bad, found := lo.Find(append([]string{b.stem}, b.tags...), func(s string) bool {
		return !utf8.ValidString(s)
	}); found {
		return Record{}, errors.Join(ErrInvalidRecord, fmt.Errorf("%q is not valid UTF-8", bad))
	}
	if b.today {
		clk := b.clock
		if clk == nil {
			clk = clock.New()
		}
		b.date = clk.Now()
	}

	r := Record{
		stem:   normalizeSegment(b.stem),
		suffix: b.suffix,
		tags: NewTagSet(lo.Map(b.tags, func(t string, _ int) string {
			return normalizeSegment(t)
		})...),
		hasVersion: b.hasVersion,
	}
	if b.hasDate {
		r.date = time.Date(b.date.Year(), b.date.Month(), b.date.Day(), 0, 0, 0, 0, time.UTC)
		r.hasDate = true
	}
	if b.hasVersion {
		r.version = b.version
	}
	if err := r.validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (r Record) validate() error {
	err := validation.Errors{
		"stem":    validation.Validate(r.stem, validation.Required),
		"suffix":  validation.Validate(r.suffix, validation.By(checkSuffix)),
		"tags":    validation.Validate(r.tags.Sorted(), validation.Each(validation.Required)),
		"date":    validation.Validate(r.date, validation.When(r.hasDate, validation.By(checkDate))),
		"version": validation.Validate(r.version, validation.When(r.hasVersion, validation.By(checkVersion))),
	}.Filter()
	if err != nil {
		return errors.Join(ErrInvalidRecord, err)
	}
	return nil
}

func checkSuffix(value any) error {
	s, _ := value.(string)
	if !validSuffix(s) {
		return fmt.Errorf("%q is not a single extension segment or a known compound suffix, or looks like a date or version", s)
	}
	return nil
}

func checkDate(value any) error {
	t, _ := value.(time.Time)
	if t.Year() < 1 || t.Year() > 9999 {
		return fmt.Errorf("year %d does not fit in eight digits", t.Year())
	}
	return nil
}

func checkVersion(value any) error {
	v, _ := value.(Version)
	if v.IsZero() {
		return errors.New("version has no release components")
	}
	if v.collidesWithDate() {
		return fmt.Errorf("leading component of %s would read as a date", v)
	}
	return nil
}

// Stem returns the normalized stem.
func (r Record) Stem() string {
	return r.stem
}

// Suffix returns the suffix without a leading '.', or "" if there is none.
func (r Record) Suffix() string {
	return r.suffix
}

// Tags returns the tag set.
func (r Record) Tags() TagSet {
	return r.tags
}

// Date returns the date at midnight UTC and whether one is set.
func (r Record) Date() (time.Time, bool) {
	return r.date, r.hasDate
}

// Version returns the version and whether one is set.
func (r Record) Version() (Version, bool) {
	return r.version, r.hasVersion
}

// IsDir reports whether r has no suffix, the form used for directory names.
func (r Record) IsDir() bool {
	return r.suffix == ""
}

// Equal reports whether r and other hold the same fields, comparing tags as
// sets.
func (r Record) Equal(other Record) bool {
	return r.stem == other.stem &&
		r.suffix == other.suffix &&
		r.tags.Equal(other.tags) &&
		r.hasDate == other.hasDate && r.date.Equal(other.date) &&
		r.hasVersion == other.hasVersion && r.version.Equal(other.version)
}

// String returns the canonical name, or "" if r is not valid.
func (r Record) String() string {
	s, err := Encode(r)
	if err != nil {
		return ""
	}
	return s
}

// MarshalText implements encoding.TextMarshaler using Encode.
func (r Record) MarshalText() ([]byte, error) {
	s, err := Encode(r)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Decode.
func (r *Record) UnmarshalText(text []byte) error {
	decoded, err := Decode(string(text))
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}
