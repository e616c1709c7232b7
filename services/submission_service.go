package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noamk2004/image-to-text/models"
	"github.com/noamk2004/image-to-text/storage"
	"github.com/noamk2004/image-to-text/utils"
)

// SubmissionState is the explicit state of the single in-flight submission.
// A succeeded attempt is not a resting state: the record is inserted and the
// workflow returns straight to idle.
type SubmissionState string

const (
	StateIdle          SubmissionState = "idle"
	StateReadyToSubmit SubmissionState = "ready"
	StateSubmitting    SubmissionState = "submitting"
	StateFailed        SubmissionState = "failed"
)

var (
	// ErrNoImageSelected means submit was called before an image was
	// selected; the workflow does not leave its current state.
	ErrNoImageSelected = errors.New("no image selected")

	// ErrSubmissionInFlight rejects any action while an attempt is
	// running. There is no queueing and no cancellation: the attempt
	// resolves before a new one may begin.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")

	// ErrNothingToRetry means retry was called without a failed attempt.
	ErrNothingToRetry = errors.New("no failed submission to retry")
)

// SubmissionStatus is the snapshot exposed to clients.
type SubmissionStatus struct {
	State    SubmissionState `json:"state"`
	HasImage bool            `json:"hasImage"`
	Error    string          `json:"error,omitempty"`
}

// SubmissionService orchestrates one meal submission at a time: analyze the
// selected image, extract macros from the answer, downsample the image,
// build the record and insert it into the store. On any failure the
// selected image is retained so a retry resubmits the exact same bytes
// without re-selection.
type SubmissionService struct {
	mu        sync.Mutex
	state     SubmissionState
	image     []byte
	mimeType  string
	lastError string

	analyzer   Analyzer
	extractor  MacroExtractor
	preprocess func([]byte) (string, error)
	store      *storage.MealStore
	log        *zap.Logger

	now          func() time.Time
	lastIDMillis int64
}

func NewSubmissionService(analyzer Analyzer, store *storage.MealStore, log *zap.Logger) *SubmissionService {
	return &SubmissionService{
		state:      StateIdle,
		analyzer:   analyzer,
		extractor:  RegexpMacroExtractor{},
		preprocess: utils.PreprocessImage,
		store:      store,
		log:        log,
		now:        time.Now,
	}
}

// Select stores the uploaded image as the pending submission input. It
// replaces any previously selected image, including one retained by a
// failed attempt.
func (s *SubmissionService) Select(image []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	if len(image) == 0 {
		return ErrNoImageSelected
	}

	s.image = append([]byte(nil), image...)
	s.mimeType = mimeType
	s.state = StateReadyToSubmit
	s.lastError = ""
	return nil
}

// Clear discards the pending image and returns to idle.
func (s *SubmissionService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	s.image = nil
	s.mimeType = ""
	s.state = StateIdle
	s.lastError = ""
	return nil
}

// Submit runs one attempt from the ready state.
func (s *SubmissionService) Submit(ctx context.Context) (models.MealRecord, error) {
	return s.run(ctx, StateReadyToSubmit, ErrNoImageSelected)
}

// Retry re-runs a failed attempt with the retained image.
func (s *SubmissionService) Retry(ctx context.Context) (models.MealRecord, error) {
	return s.run(ctx, StateFailed, ErrNothingToRetry)
}

func (s *SubmissionService) run(ctx context.Context, from SubmissionState, wrongState error) (models.MealRecord, error) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return models.MealRecord{}, ErrSubmissionInFlight
	}
	if s.state != from || len(s.image) == 0 {
		s.mu.Unlock()
		return models.MealRecord{}, wrongState
	}
	s.state = StateSubmitting
	image := s.image
	mimeType := s.mimeType
	s.mu.Unlock()

	// The slow work runs outside the lock so status reads and history
	// actions stay responsive while an attempt is in flight.
	rec, err := s.attempt(ctx, image, mimeType)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// The image stays selected so the user can retry with the
		// same input.
		s.state = StateFailed
		s.lastError = err.Error()
		s.log.Warn("meal submission failed", zap.Error(err))
		return models.MealRecord{}, err
	}

	s.state = StateIdle
	s.image = nil
	s.mimeType = ""
	s.lastError = ""
	s.log.Info("meal submitted",
		zap.String("id", rec.ID),
		zap.Int("calories", rec.Macros.Calories))
	return rec, nil
}

func (s *SubmissionService) attempt(ctx context.Context, image []byte, mimeType string) (models.MealRecord, error) {
	text, err := s.analyzer.AnalyzeMealImage(ctx, image, mimeType)
	if err != nil {
		return models.MealRecord{}, err
	}

	macros := s.extractor.Extract(text)

	// Analysis succeeded but the image cannot be stored: fail the whole
	// submission rather than keep a record with a placeholder image.
	stored, err := s.preprocess(image)
	if err != nil {
		return models.MealRecord{}, err
	}

	id, ts := s.newID()
	rec := models.MealRecord{
		ID:        id,
		Timestamp: ts,
		Image:     stored,
		Macros:    macros,
		RawText:   text,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return models.MealRecord{}, err
	}
	return rec, nil
}

// newID derives the identifier from the creation time in milliseconds,
// bumped past the last issued id and any id already in the collection so it
// is unique for the lifetime of the process.
func (s *SubmissionService) newID() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.lastIDMillis {
		ms = s.lastIDMillis + 1
	}
	for s.store.Has(strconv.FormatInt(ms, 10)) {
		ms++
	}
	s.lastIDMillis = ms
	return strconv.FormatInt(ms, 10), ms
}

// Status returns a snapshot of the workflow state.
func (s *SubmissionService) Status() SubmissionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SubmissionStatus{
		State:    s.state,
		HasImage: len(s.image) > 0,
		Error:    s.lastError,
	}
}
