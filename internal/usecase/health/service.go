package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an auxiliary dependency is failing; questions may still fail.
	Degraded Status = "degraded"
	// Unhealthy indicates the search store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names as reported in Report.Checks.
const (
	CheckStore      = "store"
	CheckEmbedding  = "embedding"
	CheckGeneration = "generation"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store      StorePinger
	embedding  EmbeddingChecker
	generation ModelPinger
	logger     *zap.Logger
}

// New creates a Service. embedding and generation can be nil.
func New(store StorePinger, embedding EmbeddingChecker, generation ModelPinger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedding: embedding, generation: generation, logger: logger}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[CheckStore] = s.run(CheckStore, s.store.Ping(ctx))
	if s.embedding != nil {
		checks[CheckEmbedding] = s.run(CheckEmbedding, s.embedding.HealthCheck(ctx))
	}
	if s.generation != nil {
		checks[CheckGeneration] = s.run(CheckGeneration, s.generation.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[CheckStore] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) run(name string, err error) CheckResult {
	if err != nil {
		s.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
