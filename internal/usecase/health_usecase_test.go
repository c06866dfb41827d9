package usecase_test

import (
	"context"
	"errors"
	"testing"

	"contact-form-service/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	t.Run("Should be ok without optional dependencies", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(nil)
		assert.Equal(t, map[string]string{"status": "ok"}, uc.Check(context.Background()))
	})

	t.Run("Should degrade when a dependency fails", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthCheckFunc{
			"redis": func(ctx context.Context) error { return errors.New("down") },
		})
		assert.Equal(t, map[string]string{
			"status": "degraded",
			"redis":  "unavailable",
		}, uc.Check(context.Background()))
	})
}
