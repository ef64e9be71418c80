package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/opsdesk-service/internal/domain"
	"github.com/spec-kit/opsdesk-service/internal/repository"
	"github.com/spec-kit/opsdesk-service/internal/sla"
)

const slaCacheKey = "sla:configs"

// SLAService loads the SLA configuration table, read-through cached in redis.
// The cache only shortens the fetch; resolution semantics live in the sla
// package, and tickets lock in whatever row was current when they were
// created.
type SLAService struct {
	repo     repository.SLARepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSLAService builds the service. cache may be nil, in which case every
// call hits postgres.
func NewSLAService(repo repository.SLARepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *SLAService {
	return &SLAService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Table returns the current SLA lookup table.
func (s *SLAService) Table(ctx context.Context) (sla.Table, error) {
	if configs, ok := s.fromCache(ctx); ok {
		return sla.NewTable(configs), nil
	}

	configs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.storeCache(ctx, configs)
	return sla.NewTable(configs), nil
}

func (s *SLAService) fromCache(ctx context.Context) ([]domain.SLAConfig, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, slaCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("sla cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var configs []domain.SLAConfig
	if err := json.Unmarshal(raw, &configs); err != nil {
		s.logger.Warn("sla cache payload invalid", zap.Error(err))
		return nil, false
	}
	return configs, true
}

func (s *SLAService) storeCache(ctx context.Context, configs []domain.SLAConfig) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(configs)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, slaCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("sla cache write failed", zap.Error(err))
	}
}
