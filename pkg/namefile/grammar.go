package namefile

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	segmentSep = "."
	tagSep     = "-"

	// dateLayout is the time layout of the date segment.
	dateLayout   = "20060102"
	dateTokenLen = len(dateLayout)
)

var (
	// versionTokenRe matches a single dot-delimited version token and
	// captures the optional v prefix, the numeric part, the qualifier and
	// the qualifier number.
	versionTokenRe = regexp.MustCompile(`^(?:([vV]?)(\d+))?(?:(a|b|rc|post|dev)(\d*))?$`)

	suffixTokenRe = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)

	// compoundSuffixes are the multi-segment suffixes recognized by Decode.
	// Any other suffix is a single segment.
	compoundSuffixes = [][]string{
		{"tar", "gz"},
		{"tar", "bz2"},
		{"tar", "xz"},
		{"tar", "zst"},
		{"tar", "lz4"},
	}
)

// CompoundSuffixes returns the multi-segment suffixes the codec accepts,
// such as "tar.gz".
func CompoundSuffixes() []string {
	out := make([]string, len(compoundSuffixes))
	for i, parts := range compoundSuffixes {
		out[i] = strings.Join(parts, segmentSep)
	}
	return out
}

// isReserved reports whether r cannot appear inside a stem or tag.
func isReserved(r rune) bool {
	return r == '-' || r == '.' || r == '/' || unicode.IsSpace(r)
}

// normalizeSegment replaces every reserved character with an underscore.
func normalizeSegment(s string) string {
	return strings.Map(func(r rune) rune {
		if isReserved(r) {
			return '_'
		}
		return r
	}, s)
}

func isDateToken(tok string) bool {
	if len(tok) != dateTokenLen {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}

func isVersionToken(tok string) bool {
	return tok != "" && versionTokenRe.MatchString(tok)
}

// isSuffixToken reports whether tok can stand alone as a suffix.
func isSuffixToken(tok string) bool {
	return suffixTokenRe.MatchString(tok) && !isDateToken(tok) && !isVersionToken(tok)
}

func isCompoundSuffix(s string) bool {
	tokens := strings.Split(s, segmentSep)
	return compoundSuffixLen(tokens) == len(tokens)
}

// compoundSuffixLen returns how many trailing tokens form a known compound
// suffix, or 0.
func compoundSuffixLen(tokens []string) int {
	for _, parts := range compoundSuffixes {
		if len(tokens) < len(parts) {
			continue
		}
		tail := tokens[len(tokens)-len(parts):]
		match := true
		for i := range parts {
			if !strings.EqualFold(tail[i], parts[i]) {
				match = false
				break
			}
		}
		if match {
			return len(parts)
		}
	}
	return 0
}

func validSuffix(s string) bool {
	if s == "" {
		return true
	}
	if strings.Contains(s, segmentSep) {
		return isCompoundSuffix(s)
	}
	return isSuffixToken(s)
}
