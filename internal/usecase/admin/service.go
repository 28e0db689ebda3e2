package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/noobLue/fullstack5pw/internal/domain/repository"
)

// Service performs administrative operations that span every store.
type Service struct {
	resetters []repository.Resetter
	logger    *slog.Logger
}

// NewService builds an admin service over the given stores. Nil entries are skipped.
func NewService(logger *slog.Logger, resetters ...repository.Resetter) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	kept := make([]repository.Resetter, 0, len(resetters))
	for _, r := range resetters {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &Service{resetters: kept, logger: logger}
}

// Reset wipes accounts, blogs, sessions and cached lists. Every store is
// attempted even if an earlier one fails.
func (s *Service) Reset(ctx context.Context) error {
	var errs []error
	for _, r := range s.resetters {
		if err := r.Reset(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.logger.Warn("all state reset")
	return nil
}
