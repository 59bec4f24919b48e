// Package notes keeps free-text job notes and post-job reviews in a kv.Store.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/elecmate/quotedesk/internal/kv"
	"github.com/elecmate/quotedesk/internal/validation"
)

// SchemaVersion is stamped on every record written by this package.
const SchemaVersion = 1

const (
	notesKeyPrefix = "job-notes-"
	reviewsKey     = "job-reviews"
)

var (
	ErrProjectRequired = errors.New("project name is required")
	ErrInvalidReview   = errors.New("invalid review")
)

// JobNotes are the observations saved against a single project.
type JobNotes struct {
	SchemaVersion    int    `json:"schemaVersion"`
	SiteObservations string `json:"siteObservations"`
	PipelineNotes    string `json:"pipelineNotes"`
	UpdatedAt        string `json:"updatedAt"`
}

// Review is a post-job comparison of estimated and actual figures. Bounds
// follow the pricing limits.
type Review struct {
	SchemaVersion   int     `json:"schemaVersion"`
	ID              string  `json:"id"`
	WinLoss         string  `json:"winLoss" validate:"required,oneof=won lost pending"`
	EstimatedCost   float64 `json:"estimatedCost" validate:"gte=0,lte=1000000000"`
	ActualCost      float64 `json:"actualCost" validate:"gte=0,lte=1000000000"`
	EstimatedHours  float64 `json:"estimatedHours" validate:"gte=0,lte=100000"`
	ActualHours     float64 `json:"actualHours" validate:"gte=0,lte=100000"`
	EstimatedProfit float64 `json:"estimatedProfit" validate:"gte=-1000000000,lte=1000000000"`
	ActualProfit    float64 `json:"actualProfit" validate:"gte=-1000000000,lte=1000000000"`
	ReviewNotes     string  `json:"reviewNotes"`
	ProjectName     string  `json:"projectName" validate:"required"`
	SubmittedAt     string  `json:"submittedAt"`
}

// Service reads and writes notes and reviews.
type Service struct {
	store    kv.Store
	now      func() time.Time
	validate *validator.Validate

	// reviewsMu serialises the read-modify-write of the review list.
	reviewsMu sync.Mutex
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service persisting to store.
func NewService(store kv.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		now:      time.Now,
		validate: validation.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notesKey(project string) string {
	return notesKeyPrefix + project
}

// SaveJobNotes overwrites the notes for project and returns what was stored.
func (s *Service) SaveJobNotes(ctx context.Context, project string, notes JobNotes) (JobNotes, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return JobNotes{}, ErrProjectRequired
	}

	notes.SchemaVersion = SchemaVersion
	notes.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	raw, err := json.Marshal(notes)
	if err != nil {
		return JobNotes{}, fmt.Errorf("encode job notes: %w", err)
	}
	if err := s.store.Set(ctx, notesKey(project), string(raw)); err != nil {
		return JobNotes{}, fmt.Errorf("save job notes for %q: %w", project, err)
	}
	return notes, nil
}

// JobNotes returns the notes saved for project, if any.
func (s *Service) JobNotes(ctx context.Context, project string) (JobNotes, bool, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return JobNotes{}, false, ErrProjectRequired
	}

	raw, ok, err := s.store.Get(ctx, notesKey(project))
	if err != nil {
		return JobNotes{}, false, fmt.Errorf("load job notes for %q: %w", project, err)
	}
	if !ok {
		return JobNotes{}, false, nil
	}

	var notes JobNotes
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return JobNotes{}, false, fmt.Errorf("decode job notes for %q: %w", project, err)
	}
	if notes.SchemaVersion == 0 {
		notes.SchemaVersion = SchemaVersion
	}
	return notes, true, nil
}

// SubmitReview validates r, stamps it and appends it to the review list.
func (s *Service) SubmitReview(ctx context.Context, r Review) (Review, error) {
	r.ProjectName = strings.TrimSpace(r.ProjectName)
	r.WinLoss = strings.ToLower(strings.TrimSpace(r.WinLoss))
	if err := s.validate.Struct(r); err != nil {
		return Review{}, fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}

	r.SchemaVersion = SchemaVersion
	r.ID = uuid.NewString()
	r.SubmittedAt = s.now().UTC().Format(time.RFC3339)

	s.reviewsMu.Lock()
	defer s.reviewsMu.Unlock()

	reviews, err := s.loadReviews(ctx)
	if err != nil {
		return Review{}, err
	}
	reviews = append(reviews, r)

	raw, err := json.Marshal(reviews)
	if err != nil {
		return Review{}, fmt.Errorf("encode reviews: %w", err)
	}
	if err := s.store.Set(ctx, reviewsKey, string(raw)); err != nil {
		return Review{}, fmt.Errorf("save reviews: %w", err)
	}
	return r, nil
}

// Reviews returns every review in submission order.
func (s *Service) Reviews(ctx context.Context) ([]Review, error) {
	s.reviewsMu.Lock()
	defer s.reviewsMu.Unlock()
	return s.loadReviews(ctx)
}

func (s *Service) loadReviews(ctx context.Context) ([]Review, error) {
	raw, ok, err := s.store.Get(ctx, reviewsKey)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	reviews := make([]Review, 0)
	if !ok || strings.TrimSpace(raw) == "" {
		return reviews, nil
	}
	if err := json.Unmarshal([]byte(raw), &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	for i := range reviews {
		if reviews[i].SchemaVersion == 0 {
			reviews[i].SchemaVersion = SchemaVersion
		}
	}
	return reviews, nil
}

// InitReviews stores an empty review list when none exists and reports
// whether it wrote one.
func InitReviews(ctx context.Context, store kv.Store) (bool, error) {
	_, ok, err := store.Get(ctx, reviewsKey)
	if err != nil {
		return false, fmt.Errorf("check reviews: %w", err)
	}
	if ok {
		return false, nil
	}
	if err := store.Set(ctx, reviewsKey, "[]"); err != nil {
		return false, fmt.Errorf("init reviews: %w", err)
	}
	return true, nil
}
