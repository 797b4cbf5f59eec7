package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canoeh/nocs/internal/builder"
	"github.com/canoeh/nocs/internal/catalog"
	"github.com/canoeh/nocs/internal/extract"
	"github.com/canoeh/nocs/internal/fixtures"
	"github.com/canoeh/nocs/internal/models"
	"github.com/canoeh/nocs/internal/storage"
)

// queryCase is a search against the fixture classification and the codes it must return.
type queryCase struct {
	Description   string
	Search        string
	ExpectedCodes []string
}

var e2eCases = []queryCase{
	{"title word", "cooks", []string{"63200"}},
	{"case insensitive", "WEB DEVELOPERS", []string{"21234"}},
	{"description text", "software", []string{"21230", "21231", "21232"}},
	{"code prefix", "2123", []string{"21230", "21231", "21232", "21233", "21234"}},
	{"ancestor group title", "Natural and applied sciences", []string{"21211", "21230", "21231", "21232", "21233", "21234"}},
	{"no match", "astronaut", nil},
}

// TestE2E_SnapshotOverHTTP builds a SQLite snapshot from the XLSX table and queries it
// through a real HTTP listener.
func TestE2E_SnapshotOverHTTP(t *testing.T) {
	ctx := context.Background()
	content, err := fixtures.XLSX()
	require.NoError(t, err)
	rows, err := extract.NewExtractor().ExtractBytes(content, ".xlsx")
	require.NoError(t, err)
	snap, report, err := builder.Build(rows, builder.Options{})
	require.NoError(t, err)
	require.Equal(t, 14, report.Records)

	path := filepath.Join(t.TempDir(), "noc.db")
	store, err := storage.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, snap))
	require.NoError(t, store.Close())

	svc := catalog.New(catalog.LoaderFunc(func(ctx context.Context) (*models.Snapshot, error) {
		st, err := storage.NewStore(path)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Load(ctx)
	}))
	defer svc.Close()

	ts := httptest.NewServer(NewServer(svc, nil, nil).Handler())
	defer ts.Close()

	for _, tc := range e2eCases {
		t.Run(tc.Description, func(t *testing.T) {
			var page models.Page
			getJSON(t, ts.URL+"/occupations?limit=100&search="+url.QueryEscape(tc.Search), &page)
			codes := make([]string, 0, len(page.Data))
			for _, occ := range page.Data {
				codes = append(codes, occ.Code)
			}
			assert.Equal(t, len(tc.ExpectedCodes), page.Pagination.Total)
			for _, want := range tc.ExpectedCodes {
				assert.True(t, slices.Contains(codes, want), "search %q: want %s in %v", tc.Search, want, codes)
			}
			assert.True(t, slices.IsSorted(codes))
		})
	}

	t.Run("detail and info", func(t *testing.T) {
		var occ models.Occupation
		getJSON(t, ts.URL+"/api/nocs/72100", &occ)
		assert.Equal(t, "Machinists and machining and tooling inspectors", occ.Title)
		assert.Equal(t, 2, occ.Tier.Level)

		var meta models.Metadata
		getJSON(t, ts.URL+"/info", &meta)
		assert.Equal(t, 14, meta.TotalEntries)
		assert.True(t, snap.Metadata.GeneratedAt.Equal(meta.GeneratedAt))
	})

	t.Run("revalidation", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/occupations/21234")
		require.NoError(t, err)
		_ = resp.Body.Close()
		etag := resp.Header.Get("ETag")
		require.NotEmpty(t, etag)

		req, err := http.NewRequest(http.MethodGet, ts.URL+"/occupations/21234", nil)
		require.NoError(t, err)
		req.Header.Set("If-None-Match", etag)
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})
}

func getJSON(t *testing.T, target string, v any) {
	t.Helper()
	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, target)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
