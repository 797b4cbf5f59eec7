// Package catalog answers read queries against one immutable occupation snapshot.
//
// The snapshot is loaded on first use and kept for the life of the process. Concurrent first
// callers share a single load; a failed load is not remembered, so the next call retries.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	nocerrors "github.com/canoeh/nocs/internal/errors"
	"github.com/canoeh/nocs/internal/keyword"
	"github.com/canoeh/nocs/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader reads a snapshot. Every storage.Store is a Loader.
type Loader interface {
	Load(ctx context.Context) (*models.Snapshot, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*models.Snapshot, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (*models.Snapshot, error) {
	return f(ctx)
}

// Service is the query layer over a lazily loaded snapshot. It is safe for concurrent use.
type Service struct {
	loader       Loader
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
	suggestLimit int

	group singleflight.Group
	state atomic.Pointer[dataset]
}

// dataset is the loaded, indexed form of a snapshot. It is never modified after publication.
type dataset struct {
	snap    *models.Snapshot
	byCode  map[string]*models.Occupation
	suggest *keyword.Index
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLimits sets the default and maximum page size. Non-positive values keep the defaults.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithSuggestLimit sets how many suggestions are returned when the caller does not say.
func WithSuggestLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.suggestLimit = n
		}
	}
}

// New returns an unloaded Service reading its snapshot from loader.
func New(loader Loader, opts ...Option) *Service {
	s := &Service{
		loader:       loader,
		logger:       zap.NewNop(),
		defaultLimit: models.DefaultPageLimit,
		maxLimit:     models.MaxPageLimit,
		suggestLimit: keyword.DefaultSuggestLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// Loaded reports whether a snapshot has been loaded.
func (s *Service) Loaded() bool {
	return s.state.Load() != nil
}

// Preload loads the snapshot now instead of on the first query.
func (s *Service) Preload(ctx context.Context) error {
	_, err := s.dataset(ctx)
	return err
}

// dataset returns the loaded dataset, loading it if needed. Callers that give up while a load
// is in flight get an error; the load itself runs to completion for the others.
func (s *Service) dataset(ctx context.Context) (*dataset, error) {
	if d := s.state.Load(); d != nil {
		return d, nil
	}
	ch := s.group.DoChan("load", func() (any, error) {
		if d := s.state.Load(); d != nil {
			return d, nil
		}
		return s.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, nocerrors.Wrap(nocerrors.ErrCodeUnavailable, "request cancelled while loading occupation data", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*dataset), nil
	}
}

func (s *Service) load(ctx context.Context) (*dataset, error) {
	start := time.Now()
	snap, err := s.loader.Load(ctx)
	var d *dataset
	if err == nil {
		d, err = s.newDataset(snap)
	}
	snapshotLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		snapshotLoadsTotal.WithLabelValues("failure").Inc()
		s.logger.Error("failed to load occupation snapshot", zap.Error(err))
		return nil, nocerrors.Wrap(nocerrors.ErrCodeLoadFailure, "occupation data could not be loaded", err)
	}

	s.state.Store(d)
	snapshotLoadsTotal.WithLabelValues("success").Inc()
	snapshotRecords.Set(float64(len(d.snap.Records)))
	s.logger.Info("occupation snapshot loaded",
		zap.Int("records", len(d.snap.Records)),
		zap.String("version", d.snap.Metadata.Version),
		zap.Time("generatedAt", d.snap.Metadata.GeneratedAt),
		zap.Duration("duration", time.Since(start)))
	return d, nil
}

// newDataset indexes snap by code. Records out of code order are re-sorted on a copy;
// duplicate or empty codes make the snapshot unusable.
func (s *Service) newDataset(snap *models.Snapshot) (*dataset, error) {
	if snap == nil {
		return nil, fmt.Errorf("loader returned no snapshot")
	}
	records := snap.Records
	if !sort.SliceIsSorted(records, func(i, j int) bool { return records[i].Code < records[j].Code }) {
		s.logger.Warn("snapshot records are not sorted by code; sorting")
		records = slices.Clone(records)
		sort.SliceStable(records, func(i, j int) bool { return records[i].Code < records[j].Code })
		snap = &models.Snapshot{Records: records, Metadata: snap.Metadata}
	}

	byCode := make(map[string]*models.Occupation, len(records))
	for i, o := range records {
		if o == nil || o.Code == "" {
			return nil, fmt.Errorf("snapshot record %d has no code", i)
		}
		if _, dup := byCode[o.Code]; dup {
			return nil, fmt.Errorf("snapshot has duplicate code %s", o.Code)
		}
		byCode[o.Code] = o
	}

	d := &dataset{snap: snap, byCode: byCode}
	idx, err := keyword.NewIndex(records)
	if err != nil {
		s.logger.Warn("suggestions disabled: failed to build title index", zap.Error(err))
	} else {
		d.suggest = idx
	}
	return d, nil
}

// LookupByCode returns the record with exactly this code.
func (s *Service) LookupByCode(ctx context.Context, code string) (*models.Occupation, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	o, ok := d.byCode[code]
	if !ok {
		lookupsTotal.WithLabelValues("not_found").Inc()
		return nil, nocerrors.NewWithContext(nocerrors.ErrCodeNotFound,
			fmt.Sprintf("occupation %s not found", code), map[string]any{"code": code})
	}
	lookupsTotal.WithLabelValues("found").Inc()
	return o, nil
}

// Search returns, in code order, every record whose search index contains term
// case-insensitively. An empty term matches nothing.
func (s *Service) Search(ctx context.Context, term string) ([]*models.Occupation, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return search(d.snap.Records, term), nil
}

func search(records []*models.Occupation, term string) []*models.Occupation {
	out := []*models.Occupation{}
	if term == "" {
		return out
	}
	needle := strings.ToLower(term)
	for _, o := range records {
		if strings.Contains(o.SearchIndex, needle) {
			out = append(out, o)
		}
	}
	return out
}

// ListAll returns every record in code order. The slice must not be modified.
func (s *Service) ListAll(ctx context.Context) ([]*models.Occupation, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clip(d.snap.Records), nil
}

// Query filters by q.Search when it is set, otherwise lists everything, then paginates.
func (s *Service) Query(ctx context.Context, q models.ListQuery) (models.Page, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return models.Page{}, err
	}
	source := d.snap.Records
	if q.Search != "" {
		source = search(source, q.Search)
	}
	return s.Paginate(source, q.Page, q.Limit), nil
}

// Paginate slices source using the service's page size limits.
func (s *Service) Paginate(source []*models.Occupation, page, limit int) models.Page {
	return paginate(source, page, limit, s.defaultLimit, s.maxLimit)
}

// Metadata returns the snapshot metadata.
func (s *Service) Metadata(ctx context.Context) (models.Metadata, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return models.Metadata{}, err
	}
	return d.snap.Metadata, nil
}

// Suggest returns typo-tolerant title suggestions. A non-positive limit uses the configured
// default; limits above the page size cap are clamped.
func (s *Service) Suggest(ctx context.Context, q string, limit int) (*models.SuggestResponse, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	if d.suggest == nil {
		return nil, nocerrors.New(nocerrors.ErrCodeUnavailable, "suggestions are unavailable")
	}
	if limit <= 0 {
		limit = s.suggestLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	resp, err := d.suggest.Suggest(ctx, q, limit)
	if err != nil {
		return nil, nocerrors.Wrap(nocerrors.ErrCodeInternal, "suggestion search failed", err)
	}
	return resp, nil
}

// Close releases the suggestion index of a loaded snapshot.
func (s *Service) Close() error {
	if d := s.state.Load(); d != nil && d.suggest != nil {
		return d.suggest.Close()
	}
	return nil
}
