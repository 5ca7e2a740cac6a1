package handler

import (
	"net/http"
	"time"

	"github.com/milequest/mapservice/internal/api/models"
	"github.com/milequest/mapservice/internal/api/response"
	"github.com/milequest/mapservice/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. registry may be nil.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health. It always answers 200 and reports
// DEGRADED while any provider breaker is not closed.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	providers, status := h.providerStatuses()

	response.OK(w, r, models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
		Providers: providers,
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It answers 503 while any
// provider breaker is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	providers, status := h.providerStatuses()

	code := http.StatusOK
	for _, p := range providers {
		if p.Status == models.HealthStatusFail {
			code = http.StatusServiceUnavailable
			status = models.HealthStatusFail
			break
		}
	}

	response.JSON(w, r, code, models.Health{
		Status:    status,
		Time:      models.Timestamp(time.Now()),
		Providers: providers,
	})
}

func (h *OpsHandler) providerStatuses() ([]models.ProviderStatus, models.HealthStatus) {
	overall := models.HealthStatusOK
	if h.registry == nil {
		return nil, overall
	}

	all := h.registry.GetAllHealth()
	providers := make([]models.ProviderStatus, 0, len(all))
	for _, ph := range all {
		ps := models.ProviderStatus{
			Provider:      ph.Name,
			Status:        healthStatus(ph),
			CircuitState:  ph.CircuitState.String(),
			LastSuccessAt: timestampPtr(ph.LastSuccessAt),
			LastFailureAt: timestampPtr(ph.LastFailureAt),
		}
		if ps.Status != models.HealthStatusOK {
			overall = models.HealthStatusDegraded
		}
		providers = append(providers, ps)
	}
	return providers, overall
}

func healthStatus(ph *resilience.ProviderHealth) models.HealthStatus {
	switch {
	case ph.IsHealthy():
		return models.HealthStatusOK
	case ph.IsDegraded():
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusFail
	}
}

func timestampPtr(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	ts := models.Timestamp(*t)
	return &ts
}
