package catalog

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/starford/namefile/internal/index"
	"github.com/starford/namefile/internal/models"
	"github.com/starford/namefile/internal/storage"
	"github.com/starford/namefile/pkg/namefile"
)

// ScanReport is the outcome of decoding every file name under a directory.
type ScanReport struct {
	Entries   []models.Entry     `json:"entries" yaml:"entries"`
	Unmanaged []models.Unmanaged `json:"unmanaged" yaml:"unmanaged"`
}

// Scan decodes the name of every file under dir without touching an index.
// Results are sorted by path.
func Scan(ctx context.Context, store storage.Provider, dir string) (*ScanReport, error) {
	metas, err := store.List(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.Entry, len(metas))
	unmanaged := make([]*models.Unmanaged, len(metas))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range metas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := namefile.Decode(m.Name)
			if err != nil {
				unmanaged[i] = &models.Unmanaged{
					Path:    m.Path,
					Name:    m.Name,
					Reason:  index.Reason(err),
					Kind:    namefile.ErrorKind(err),
					Size:    m.Size,
					ModTime: m.ModTime,
				}
				return nil
			}
			e := index.EntryFromRecord(rec, m)
			entries[i] = &e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &ScanReport{Entries: []models.Entry{}, Unmanaged: []models.Unmanaged{}}
	for i := range metas {
		switch {
		case entries[i] != nil:
			report.Entries = append(report.Entries, *entries[i])
		case unmanaged[i] != nil:
			report.Unmanaged = append(report.Unmanaged, *unmanaged[i])
		}
	}
	sort.Slice(report.Entries, func(i, j int) bool { return report.Entries[i].Path < report.Entries[j].Path })
	sort.Slice(report.Unmanaged, func(i, j int) bool { return report.Unmanaged[i].Path < report.Unmanaged[j].Path })
	return report, nil
}
