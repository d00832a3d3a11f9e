package application

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SyncStore is the slice of the post repository the sync engine writes through.
type SyncStore interface {
	ListPostSlugs(ctx context.Context) (map[string]struct{}, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error)
	CreatePost(ctx context.Context, src domain.SourceFile, status domain.Status, now time.Time) (*domain.Post, error)
	UpdatePost(ctx context.Context, slug string, fields domain.PostFields) (*domain.Post, error)
	DeletePost(ctx context.Context, slug string) error
}

// SyncObserver receives the outcome of every sync attempt.
type SyncObserver interface {
	ObserveSync(result domain.SyncResult, err error, elapsed time.Duration)
}

type SyncOption func(*SyncEngine)

// WithClock replaces time.Now as the source of created_at/updated_at.
func WithClock(now func() time.Time) SyncOption {
	return func(e *SyncEngine) {
		e.now = now
	}
}

func WithSyncObserver(o SyncObserver) SyncOption {
	return func(e *SyncEngine) {
		e.observer = o
	}
}

// SyncEngine reconciles persisted posts against the files of a FileSource.
// Only one Sync runs at a time per engine; overlapping calls are rejected.
type SyncEngine struct {
	source   domain.FileSource
	store    SyncStore
	now      func() time.Time
	observer SyncObserver

	mu sync.Mutex
}

func NewSyncEngine(source domain.FileSource, store SyncStore, opts ...SyncOption) *SyncEngine {
	e := &SyncEngine{
		source: source,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync runs one reconciliation pass.
// On failure the counts of the writes that did happen are returned alongside the error.
func (e *SyncEngine) Sync(ctx context.Context) (domain.SyncResult, error) {
	if !e.mu.TryLock() {
		err := &domain.SyncInProgressError{}
		e.observe(domain.SyncResult{}, err, 0)
		return domain.SyncResult{}, err
	}
	defer e.mu.Unlock()

	runID := uuid.NewString()
	started := time.Now()
	log.Debug().Str("run", runID).Msg("Sync started")

	result, err := e.reconcile(ctx)
	elapsed := time.Since(started)
	e.observe(result, err, elapsed)

	evt := log.Info()
	if err != nil {
		evt = log.Error().Err(err).Str("kind", domain.SyncErrorKind(err))
	}
	evt.Str("run", runID).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Dur("duration", elapsed).
		Msg("Sync finished")

	return result, err
}

func (e *SyncEngine) observe(result domain.SyncResult, err error, elapsed time.Duration) {
	if e.observer != nil {
		e.observer.ObserveSync(result, err, elapsed)
	}
}

func (e *SyncEngine) reconcile(ctx context.Context) (domain.SyncResult, error) {
	var result domain.SyncResult

	files, err := e.source.ListSourceFiles(ctx)
	if err != nil {
		var ioErr *domain.IOError
		if !errors.As(err, &ioErr) {
			err = &domain.IOError{Err: err}
		}
		return result, err
	}

	sources, err := indexBySlug(files)
	if err != nil {
		return result, err
	}

	persisted, err := e.store.ListPostSlugs(ctx)
	if err != nil {
		return result, &domain.PersistenceError{Op: "list slugs", Err: err}
	}

	var toCreate, toCompare, toDelete []string
	for slug := range sources {
		if _, ok := persisted[slug]; ok {
			toCompare = append(toCompare, slug)
		} else {
			toCreate = append(toCreate, slug)
		}
	}
	for slug := range persisted {
		if _, ok := sources[slug]; !ok {
			toDelete = append(toDelete, slug)
		}
	}
	slices.Sort(toCreate)
	slices.Sort(toCompare)
	slices.Sort(toDelete)

	for _, slug := range toCreate {
		src := sources[slug]
		status := domain.StatusShow
		if src.Hidden {
			status = domain.StatusHide
		}
		if _, err := e.store.CreatePost(ctx, src, status, e.now()); err != nil {
			return result, &domain.PersistenceError{Op: "create", Slug: slug, Err: err}
		}
		result.Created++
	}

	for _, slug := range toCompare {
		updated, err := e.updateIfChanged(ctx, sources[slug])
		if err != nil {
			return result, err
		}
		if updated {
			result.Updated++
		}
	}

	for _, slug := range toDelete {
		if err := e.store.DeletePost(ctx, slug); err != nil {
			return result, &domain.PersistenceError{Op: "delete", Slug: slug, Err: err}
		}
		result.Deleted++
	}

	return result, nil
}

func (e *SyncEngine) updateIfChanged(ctx context.Context, src domain.SourceFile) (bool, error) {
	existing, err := e.store.GetPostBySlug(ctx, src.Slug)
	if err != nil {
		return false, &domain.PersistenceError{Op: "get", Slug: src.Slug, Err: err}
	}

	if existing.Title == src.Title &&
		existing.Category == src.Category &&
		existing.Content == src.Content {
		return false, nil
	}

	// updated_at must move forward even when the clock has not.
	updatedAt := e.now()
	if !updatedAt.After(existing.UpdatedAt) {
		updatedAt = existing.UpdatedAt.Add(time.Microsecond)
	}

	_, err = e.store.UpdatePost(ctx, src.Slug, domain.PostFields{
		Title:     src.Title,
		Category:  src.Category,
		Content:   src.Content,
		FilePath:  src.Path,
		FileHash:  src.Hash,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		return false, &domain.PersistenceError{Op: "update", Slug: src.Slug, Err: err}
	}

	return true, nil
}

// indexBySlug keys files by slug, failing on the first slug claimed by more than one file.
func indexBySlug(files []domain.SourceFile) (map[string]domain.SourceFile, error) {
	bySlug := make(map[string]domain.SourceFile, len(files))
	paths := make(map[string][]string, len(files))
	for _, f := range files {
		paths[f.Slug] = append(paths[f.Slug], f.Path)
		bySlug[f.Slug] = f
	}

	var dupes []string
	for slug, p := range paths {
		if len(p) > 1 {
			dupes = append(dupes, slug)
		}
	}
	if len(dupes) > 0 {
		slices.Sort(dupes)
		p := paths[dupes[0]]
		slices.Sort(p)
		return nil, &domain.DuplicateSlugError{Slug: dupes[0], Paths: p}
	}

	return bySlug, nil
}
