package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// Cache keys of the three journal lists.
const (
	KeyStudents = "students"
	KeySubjects = "subjects"
	KeyGrades   = "grades"
)

// TTLJournalLists bounds staleness if an invalidation is lost.
const TTLJournalLists = 5 * time.Minute

// Store is the subset of Cache used by CachedRepository.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

var _ Store = (*Cache)(nil)

// CachedRepository serves list reads from a Store and falls through to the
// wrapped repository on a miss. Writes go to the repository first and then
// invalidate the lists they touch. Cache failures never fail a request.
type CachedRepository struct {
	next   journal.Repository
	store  Store
	ttl    time.Duration
	logger *logger.Logger
}

var _ journal.Repository = (*CachedRepository)(nil)

// NewCachedRepository wraps next. A non-positive ttl uses TTLJournalLists.
func NewCachedRepository(next journal.Repository, store Store, ttl time.Duration, log *logger.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = TTLJournalLists
	}
	if log == nil {
		log = logger.Default()
	}
	return &CachedRepository{next: next, store: store, ttl: ttl, logger: log.With(logger.Component("journal_cache"))}
}

func (r *CachedRepository) ListStudents(ctx context.Context) ([]journal.Student, error) {
	return cachedList(ctx, r, KeyStudents, r.next.ListStudents)
}

func (r *CachedRepository) ListSubjects(ctx context.Context) ([]journal.Subject, error) {
	return cachedList(ctx, r, KeySubjects, r.next.ListSubjects)
}

func (r *CachedRepository) ListGrades(ctx context.Context) ([]journal.Grade, error) {
	return cachedList(ctx, r, KeyGrades, r.next.ListGrades)
}

func (r *CachedRepository) CreateStudent(ctx context.Context, name string) (journal.Student, error) {
	s, err := r.next.CreateStudent(ctx, name)
	if err == nil {
		r.invalidate(ctx, KeyStudents)
	}
	return s, err
}

// DeleteStudent also drops the grade list, which lost the student's row.
func (r *CachedRepository) DeleteStudent(ctx context.Context, id int64) error {
	err := r.next.DeleteStudent(ctx, id)
	if err == nil {
		r.invalidate(ctx, KeyStudents, KeyGrades)
	}
	return err
}

func (r *CachedRepository) CreateSubject(ctx context.Context, name string) (journal.Subject, error) {
	s, err := r.next.CreateSubject(ctx, name)
	if err == nil {
		r.invalidate(ctx, KeySubjects)
	}
	return s, err
}

func (r *CachedRepository) DeleteSubject(ctx context.Context, id int64) error {
	err := r.next.DeleteSubject(ctx, id)
	if err == nil {
		r.invalidate(ctx, KeySubjects, KeyGrades)
	}
	return err
}

func (r *CachedRepository) UpsertGrade(ctx context.Context, g journal.Grade) (journal.Grade, error) {
	out, err := r.next.UpsertGrade(ctx, g)
	if err == nil {
		r.invalidate(ctx, KeyGrades)
	}
	return out, err
}

func (r *CachedRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.store.Delete(ctx, keys...); err != nil {
		r.logger.Warn("cache invalidation failed", logger.Any("keys", keys), logger.Err(err))
	}
}

func cachedList[T any](ctx context.Context, r *CachedRepository, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var cached []T
	err := r.store.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn("cache read failed", logger.String("key", key), logger.Err(err))
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, key, items, r.ttl); err != nil {
		r.logger.Warn("cache write failed", logger.String("key", key), logger.Err(err))
	}
	return items, nil
}
