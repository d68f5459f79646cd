package namefile

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Encode returns the canonical name of r: the stem followed by its tags in
// lexicographic order, then the date, the version and the suffix, each as
// its own '.'-separated segment. It fails with ErrInvalidRecord if r is not
// valid, which only happens for the zero Record.
func Encode(r Record) (string, error) {
	if err := r.validate(); err != nil {
		return "", err
	}

	var head strings.Builder
	head.WriteString(r.stem)
	for _, t := range r.tags.Sorted() {
		head.WriteString(tagSep)
		head.WriteString(t)
	}

	segments := []string{head.String()}
	if r.hasDate {
		segments = append(segments, r.date.Format(dateLayout))
	}
	if r.hasVersion {
		segments = append(segments, r.version.String())
	}
	if r.suffix != "" {
		segments = append(segments, r.suffix)
	}
	return strings.Join(segments, segmentSep), nil
}

// Decode parses name back into a Record.
//
// The first segment holds the stem and the tags. The trailing segment is the
// suffix unless it is date- or version-shaped; a known compound suffix such
// as tar.gz is taken whole. The segments in between must be an optional
// eight-digit date followed by an optional run of version tokens. Date is
// checked before version, and version before suffix.
//
// Decode fails with ErrUnparseableName if the name does not segment this
// way, ErrInvalidDate if the date segment is not a calendar date,
// ErrInvalidVersion if the version run is malformed, and ErrInvalidRecord if
// the decoded fields fail Record validation.
func Decode(name string) (Record, error) {
	if name == "" {
		return Record{}, newErr(ErrUnparseableName, "empty name")
	}
	tokens := strings.Split(name, segmentSep)
	for i, tok := range tokens {
		if tok == "" {
			return Record{}, newErr(ErrUnparseableName, "%q: empty segment at position %d", name, i)
		}
	}

	var opts []Option
	suffix, middle := splitSuffix(tokens[1:])
	if suffix != "" {
		opts = append(opts, WithSuffix(suffix))
	}

	classified, err := classify(name, middle)
	if err != nil {
		return Record{}, err
	}
	opts = append(opts, classified...)

	stem, tags, err := splitHead(name, tokens[0])
	if err != nil {
		return Record{}, err
	}
	opts = append(opts, WithTags(tags...))

	r, err := New(stem, opts...)
	if err != nil {
		return Record{}, fmt.Errorf("%q: %w", name, err)
	}
	return r, nil
}

// splitSuffix removes the suffix from the tail of tokens.
func splitSuffix(tokens []string) (string, []string) {
	if n := compoundSuffixLen(tokens); n > 0 {
		cut := len(tokens) - n
		return strings.Join(tokens[cut:], segmentSep), tokens[:cut]
	}
	if len(tokens) > 0 && isSuffixToken(tokens[len(tokens)-1]) {
		cut := len(tokens) - 1
		return tokens[cut], tokens[:cut]
	}
	return "", tokens
}

// classify turns the segments between head and suffix into date and version
// options.
func classify(name string, tokens []string) ([]Option, error) {
	var (
		opts    []Option
		hasDate bool
		run     []string
	)
	for _, tok := range tokens {
		switch {
		case !hasDate && len(run) == 0 && isDateToken(tok):
			d, err := time.Parse(dateLayout, tok)
			if err != nil || d.Year() < 1 {
				return nil, newErr(ErrInvalidDate, "%q: segment %q is not a calendar date", name, tok)
			}
			opts = append(opts, WithDate(d))
			hasDate = true
		case isVersionToken(tok):
			run = append(run, tok)
		default:
			return nil, newErr(ErrUnparseableName, "%q: unrecognized segment %q", name, tok)
		}
	}
	if len(run) == 0 {
		return opts, nil
	}

	v, err := parseVersionTokens(run)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}
	if v.collidesWithDate() {
		return nil, newErr(ErrInvalidVersion, "%q: version %s starts with a date-shaped component", name, v)
	}
	return append(opts, WithVersionValue(v)), nil
}

// splitHead splits the first segment into the stem and its tags.
func splitHead(name, head string) (string, []string, error) {
	parts := strings.Split(head, tagSep)
	for _, p := range parts {
		if p == "" {
			return "", nil, newErr(ErrUnparseableName, "%q: empty stem or tag in %q", name, head)
		}
		if !utf8.ValidString(p) {
			return "", nil, newErr(ErrUnparseableName, "%q: %q is not valid UTF-8", name, p)
		}
		if strings.IndexFunc(p, isReserved) >= 0 {
			return "", nil, newErr(ErrUnparseableName, "%q: reserved character in %q", name, p)
		}
	}
	return parts[0], parts[1:], nil
}
