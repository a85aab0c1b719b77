package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DefaultPageLimit = 10
	DefaultTopLimit  = 5
	MaxPageLimit     = 100

	defaultStoreTimeout = 5 * time.Second
)

// Store is what the service needs from the persistence layer. *Repo is the
// Mongo implementation; tests plug in an in-memory one.
type Store interface {
	Insert(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error)
	List(ctx context.Context, q ListQuery) ([]*Note, error)
	Count(ctx context.Context, author string) (int64, error)
	TopLiked(ctx context.Context, limit int) ([]*Note, error)
	IncrementLikes(ctx context.Context, id primitive.ObjectID) (*Note, error)
	DecrementLikes(ctx context.Context, id primitive.ObjectID) (*Note, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*Note, error)
}

type Service struct {
	store   Store
	timeout time.Duration
}

func NewService(store Store) *Service {
	return &Service{
		store:   store,
		timeout: defaultStoreTimeout,
	}
}

// Create validates the candidate note and persists it with likes = 0 and
// store-assigned id/timestamps.
func (s *Service) Create(ctx context.Context, input CreateNoteInput) (*Note, error) {
	content, author, err := ValidateNote(input.Content, input.Author)
	if err != nil {
		return nil, err
	}

	note := &Note{
		Content: content,
		Author:  author,
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if err := s.store.Insert(ctx, note); err != nil {
		return nil, s.storeErr(err)
	}
	return note, nil
}

// GetByID retrieves a note by ID
func (s *Service) GetByID(ctx context.Context, id string) (*Note, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	note, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return note, nil
}

// List returns one page of notes, newest first, plus pagination metadata
// computed from the true totals. A page past the end yields an empty slice
// with the metadata intact.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Note, *PageInfo, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Page < 1 {
		return nil, nil, &ValidationError{Field: "page", Message: "page must be a positive integer"}
	}
	if q.Limit < 1 {
		return nil, nil, &ValidationError{Field: "limit", Message: "limit must be a positive integer"}
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	items, err := s.store.List(ctx, q)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}
	total, err := s.store.Count(ctx, q.Author)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}

	return items, buildPageInfo(q.Page, q.Limit, total), nil
}

// TopLiked returns the most liked notes, ties broken by recency
func (s *Service) TopLiked(ctx context.Context, limit int) ([]*Note, error) {
	if limit == 0 {
		limit = DefaultTopLimit
	}
	if limit < 1 {
		return nil, &ValidationError{Field: "limit", Message: "limit must be a positive integer"}
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	notes, err := s.store.TopLiked(ctx, limit)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return notes, nil
}

// Like adds one like and returns the updated note
func (s *Service) Like(ctx context.Context, id string) (*Note, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	note, err := s.store.IncrementLikes(ctx, oid)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return note, nil
}

// Unlike removes one like, flooring at zero, and returns the updated note
func (s *Service) Unlike(ctx context.Context, id string) (*Note, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	note, err := s.store.DecrementLikes(ctx, oid)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return note, nil
}

// Delete removes a note permanently and returns the deleted snapshot
func (s *Service) Delete(ctx context.Context, id string) (*Note, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	note, err := s.store.Delete(ctx, oid)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return note, nil
}

// parseID rejects ids that are not 24-char hex strings, before any store
// access happens.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// buildPageInfo computes pagination metadata. A zero total still reads as
// one page of zero items.
func buildPageInfo(page, limit int, total int64) *PageInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return &PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalNotes:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
		Limit:       limit,
	}
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// storeErr maps transport-level failures to ErrStoreUnavailable so the
// handler never leaks driver internals.
func (s *Service) storeErr(err error) error {
	switch {
	case errors.Is(err, ErrNoteNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return err
	}
}
