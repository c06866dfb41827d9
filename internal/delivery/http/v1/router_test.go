package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contact-form-service/config"
	v1 "contact-form-service/internal/delivery/http/v1"
	"contact-form-service/internal/domain"
	"contact-form-service/internal/repository/memory"
	"contact-form-service/internal/usecase"
	"contact-form-service/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      domain.FormView `json:"data"`
	RequestID string          `json:"request_id"`
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                     "8080",
		GinMode:                  gin.TestMode,
		FrontendURL:              "http://localhost:3000",
		SessionTTL:               time.Hour,
		RateLimitWindowSeconds:   60,
		RateLimitGlobalThreshold: 1000,
		RateLimitSubmitThreshold: 1000,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewFormRepository(cfg.SessionTTL)
	machine := usecase.NewFormMachine(usecase.NewContactValidator(validation.New()), cfg.ValidateOnChange)

	return v1.NewRouter(v1.RouterDeps{
		ContactFormUC: usecase.NewContactFormUsecase(repo, machine),
		HealthUC:      usecase.NewHealthUsecase(nil),
		Config:        cfg,
	})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
