package usecase

import (
	"context"
	"sort"
)

// HealthCheckFunc probes one optional dependency
type HealthCheckFunc func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	checks map[string]HealthCheckFunc
}

func NewHealthUsecase(checks map[string]HealthCheckFunc) HealthUsecase {
	return &healthUsecase{checks: checks}
}

// Check never fails the service: optional dependencies only degrade it
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	result := map[string]string{
		"status": "ok",
	}

	names := make([]string, 0, len(u.checks))
	for name := range u.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := u.checks[name](ctx); err != nil {
			result[name] = "unavailable"
			result["status"] = "degraded"
			continue
		}
		result[name] = "ok"
	}
	return result
}
