package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/canoeh/nocs/internal/models"
)

// syntheticSnapshot returns n sorted records shaped like unit groups.
func syntheticSnapshot(n int) *models.Snapshot {
	records := make([]*models.Occupation, n)
	for i := range records {
		code := fmt.Sprintf("%05d", i*7)
		title := fmt.Sprintf("Occupation %d technicians and specialists", i)
		records[i] = &models.Occupation{
			Code:        code,
			Title:       title,
			Description: "Workers in this unit group plan, organize and perform specialized duties.",
			SearchIndex: strings.ToLower(code + " " + title),
		}
	}
	return &models.Snapshot{Records: records, Metadata: models.Metadata{TotalEntries: n}}
}

func benchService(b *testing.B) *Service {
	b.Helper()
	snap := syntheticSnapshot(600)
	svc := New(LoaderFunc(func(context.Context) (*models.Snapshot, error) { return snap, nil }))
	if err := svc.Preload(context.Background()); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = svc.Close() })
	return svc
}

func BenchmarkService_LookupByCode(b *testing.B) {
	svc := benchService(b)
	ctx := context.Background()
	for b.Loop() {
		_, _ = svc.LookupByCode(ctx, "02100")
	}
}

func BenchmarkService_QuerySearch(b *testing.B) {
	svc := benchService(b)
	ctx := context.Background()
	q := models.ListQuery{Search: "technicians", Page: 3, Limit: 20}
	for b.Loop() {
		_, _ = svc.Query(ctx, q)
	}
}

func BenchmarkService_Suggest(b *testing.B) {
	svc := benchService(b)
	ctx := context.Background()
	for b.Loop() {
		_, _ = svc.Suggest(ctx, "technicans", 10)
	}
}

func BenchmarkPaginate(b *testing.B) {
	records := syntheticSnapshot(600).Records
	for b.Loop() {
		_ = Paginate(records, 7, 50)
	}
}

func BenchmarkFingerprint(b *testing.B) {
	page := Paginate(syntheticSnapshot(600).Records, 1, 100)
	for b.Loop() {
		_, _ = Fingerprint(page)
	}
}
