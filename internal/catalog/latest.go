package catalog

import (
	"github.com/samber/lo"

	"github.com/starford/namefile/internal/models"
	"github.com/starford/namefile/pkg/namefile"
)

type ranked struct {
	entry      models.Entry
	version    namefile.Version
	hasVersion bool
}

// pickLatest returns the entry with the greatest version. Entries without a
// version rank below any versioned entry. Ties go to the later date, then
// to the lexicographically greater path.
func pickLatest(entries []models.Entry) (models.Entry, bool) {
	if len(entries) == 0 {
		return models.Entry{}, false
	}
	candidates := lo.Map(entries, func(e models.Entry, _ int) ranked {
		r := ranked{entry: e}
		if e.Version != "" {
			if v, err := namefile.ParseVersion(e.Version); err == nil {
				r.version, r.hasVersion = v, true
			}
		}
		return r
	})
	best := lo.MaxBy(candidates, func(a, b ranked) bool {
		return newer(a, b)
	})
	return best.entry, true
}

// newer reports whether a ranks strictly above b.
func newer(a, b ranked) bool {
	if a.hasVersion != b.hasVersion {
		return a.hasVersion
	}
	if a.hasVersion {
		if c := a.version.Compare(b.version); c != 0 {
			return c > 0
		}
	}
	// Dates are YYYY-MM-DD, so string order is calendar order.
	if a.entry.Date != b.entry.Date {
		return a.entry.Date > b.entry.Date
	}
	return a.entry.Path > b.entry.Path
}
