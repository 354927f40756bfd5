package services

import (
	"context"

	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/ratelimit"
	"github.com/veritag/veritag/internal/server/repositories/repomanager"
)

// AdminService hosts maintenance operations that cut across collections.
type AdminService struct {
	repos   repomanager.RepositoryManager
	limiter ratelimit.Limiter
	logger  logging.Logger
}

func NewAdminService(repos repomanager.RepositoryManager, limiter ratelimit.Limiter, logger logging.Logger) *AdminService {
	return &AdminService{repos: repos, limiter: limiter, logger: logger}
}

// Reset wipes every stored collection and all rate-limit windows.
func (s *AdminService) Reset(ctx context.Context) error {
	if err := s.repos.ResetAll(ctx); err != nil {
		return err
	}
	if err := s.limiter.ResetAll(ctx); err != nil {
		return err
	}
	s.logger.Warn(ctx, "all collections reset")
	return nil
}
