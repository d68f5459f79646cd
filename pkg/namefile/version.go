package namefile

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Qualifier marks a pre-release, post-release or development version.
type Qualifier string

// Known qualifiers, in PEP 440 spelling.
const (
	QualifierAlpha Qualifier = "a"
	QualifierBeta  Qualifier = "b"
	QualifierRC    Qualifier = "rc"
	QualifierPost  Qualifier = "post"
	QualifierDev   Qualifier = "dev"
)

func (q Qualifier) valid() bool {
	switch q {
	case QualifierAlpha, QualifierBeta, QualifierRC, QualifierPost, QualifierDev:
		return true
	}
	return false
}

// attached reports whether q is written directly after the last release
// component (1.0rc1) rather than as its own segment (1.0.post1).
func (q Qualifier) attached() bool {
	return q == QualifierAlpha || q == QualifierBeta || q == QualifierRC
}

// rank orders qualifiers: dev < a < b < rc < final < post.
func (q Qualifier) rank() int {
	switch q {
	case QualifierDev:
		return 0
	case QualifierAlpha:
		return 1
	case QualifierBeta:
		return 2
	case QualifierRC:
		return 3
	case QualifierPost:
		return 5
	}
	return 4
}

// Version is a dotted numeric version with an optional qualifier, such as
// 1.2.0, 1.0rc1 or 1.2.0.post1. The zero value means "no version".
type Version struct {
	release   []int
	qualifier Qualifier
	number    int
}

// NewVersion returns a final release version with the given components.
func NewVersion(release ...int) (Version, error) {
	if len(release) == 0 {
		return Version{}, newErr(ErrInvalidVersion, "at least one release component is required")
	}
	for _, n := range release {
		if n < 0 {
			return Version{}, newErr(ErrInvalidVersion, "negative release component %d", n)
		}
	}
	return Version{release: slices.Clone(release)}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseVersion parses s under the version grammar. Components are separated
// by '.', each being digits, digits followed by a qualifier, or a qualifier.
// A qualifier ends the version and may be followed by digits; a missing
// qualifier number means 0. A leading 'v' or 'V' is accepted and dropped.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, newErr(ErrInvalidVersion, "empty version")
	}
	return parseVersionTokens(strings.Split(s, segmentSep))
}

func parseVersionTokens(tokens []string) (Version, error) {
	var v Version
	for i, tok := range tokens {
		if v.qualifier != "" {
			return Version{}, newErr(ErrInvalidVersion, "%q: qualifier %q must be the last component",
				strings.Join(tokens, segmentSep), v.qualifier)
		}
		m := versionTokenRe.FindStringSubmatch(tok)
		if tok == "" || m == nil {
			return Version{}, newErr(ErrInvalidVersion, "malformed version component %q", tok)
		}
		prefix, digits, qual, qualDigits := m[1], m[2], m[3], m[4]
		if prefix != "" && i > 0 {
			return Version{}, newErr(ErrInvalidVersion, "%q: prefix %q only allowed before the first component", tok, prefix)
		}
		if digits == "" && i == 0 {
			return Version{}, newErr(ErrInvalidVersion, "%q: version must start with a numeric component", tok)
		}
		if digits != "" {
			n, err := strconv.Atoi(digits)
			if err != nil {
				return Version{}, newErr(ErrInvalidVersion, "component %q out of range", digits)
			}
			v.release = append(v.release, n)
		}
		if qual != "" {
			v.qualifier = Qualifier(qual)
			if qualDigits != "" {
				n, err := strconv.Atoi(qualDigits)
				if err != nil {
					return Version{}, newErr(ErrInvalidVersion, "qualifier number %q out of range", qualDigits)
				}
				v.number = n
			}
		}
	}
	return v, nil
}

// WithQualifier returns a copy of v carrying qualifier q with number n.
func (v Version) WithQualifier(q Qualifier, n int) (Version, error) {
	if v.IsZero() {
		return Version{}, newErr(ErrInvalidVersion, "qualifier %q needs a release", q)
	}
	if !q.valid() {
		return Version{}, newErr(ErrInvalidVersion, "unknown qualifier %q", q)
	}
	if n < 0 {
		return Version{}, newErr(ErrInvalidVersion, "negative qualifier number %d", n)
	}
	out := Version{release: slices.Clone(v.release), qualifier: q, number: n}
	return out, nil
}

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool {
	return len(v.release) == 0
}

// Release returns a copy of the numeric release components.
func (v Version) Release() []int {
	return slices.Clone(v.release)
}

// Qualifier returns the qualifier and its number, if any.
func (v Version) Qualifier() (Qualifier, int, bool) {
	return v.qualifier, v.number, v.qualifier != ""
}

// String returns the canonical form of v.
func (v Version) String() string {
	if v.IsZero() {
		return ""
	}
	var b strings.Builder
	for i, n := range v.release {
		if i > 0 {
			b.WriteString(segmentSep)
		}
		b.WriteString(strconv.Itoa(n))
	}
	if v.qualifier != "" {
		if !v.qualifier.attached() {
			b.WriteString(segmentSep)
		}
		b.WriteString(string(v.qualifier))
		b.WriteString(strconv.Itoa(v.number))
	}
	return b.String()
}

// Equal reports whether v and other are structurally identical. Unlike
// Compare, 1.0 and 1.0.0 are not equal.
func (v Version) Equal(other Version) bool {
	return slices.Equal(v.release, other.release) &&
		v.qualifier == other.qualifier &&
		v.number == other.number
}

// Compare orders versions: release components numerically with missing
// trailing components treated as zero, then dev < a < b < rc < final < post,
// then the qualifier number.
func (v Version) Compare(other Version) int {
	n := max(len(v.release), len(other.release))
	for i := 0; i < n; i++ {
		if c := cmp.Compare(component(v.release, i), component(other.release, i)); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(v.qualifier.rank(), other.qualifier.rank()); c != 0 {
		return c
	}
	return cmp.Compare(v.number, other.number)
}

func component(release []int, i int) int {
	if i < len(release) {
		return release[i]
	}
	return 0
}

// collidesWithDate reports whether the leading component would be read back
// as a date segment.
func (v Version) collidesWithDate() bool {
	return !v.IsZero() && len(strconv.Itoa(v.release[0])) == dateTokenLen
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
