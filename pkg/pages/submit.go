package pages

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formpages/pkg/model"
)

// Submission is one accepted set of page values.
type Submission struct {
	ID         uuid.UUID    `json:"id"`
	Page       string       `json:"page"`
	Locale     string       `json:"locale,omitempty"`
	Values     model.Values `json:"values"`
	ReceivedAt time.Time    `json:"receivedAt"`
}

// NewSubmission stamps values with a fresh ID and the current time.
func NewSubmission(page, locale string, values model.Values) Submission {
	return Submission{
		ID:         uuid.New(),
		Page:       page,
		Locale:     locale,
		Values:     values.Clone(),
		ReceivedAt: time.Now().UTC(),
	}
}

// Submitter receives accepted submissions.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, sub Submission) error

// Submit calls fn.
func (fn SubmitterFunc) Submit(ctx context.Context, sub Submission) error {
	if fn == nil {
		return errors.New("pages: nil submitter")
	}
	return fn(ctx, sub)
}

// LogSubmitter writes submissions to a zap logger and keeps nothing.
type LogSubmitter struct {
	logger *zap.Logger
}

// NewLogSubmitter returns a submitter logging through logger. A nil logger
// discards submissions.
func NewLogSubmitter(logger *zap.Logger) *LogSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSubmitter{logger: logger.Named("submit")}
}

// Submit logs the flat submitted values.
func (s *LogSubmitter) Submit(ctx context.Context, sub Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("form submitted",
		zap.String("id", sub.ID.String()),
		zap.String("page", sub.Page),
		zap.String("locale", sub.Locale),
		zap.Any("values", sub.Values),
	)
	return nil
}

// Rejected logs a submission that failed validation.
func (s *LogSubmitter) Rejected(page string, errs map[string][]string) {
	s.logger.Info("form rejected",
		zap.String("page", page),
		zap.Any("errors", errs),
	)
}
