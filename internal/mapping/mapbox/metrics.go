package mapbox

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/milequest/mapservice/pkg/maperr"
)

const meterName = "github.com/milequest/mapservice/internal/mapping/mapbox"

// providerMetrics holds instruments for Mapbox calls.
type providerMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

func newProviderMetrics() (*providerMetrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"mapping.provider.request.duration",
		metric.WithDescription("Duration of mapping provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"mapping.provider.request.total",
		metric.WithDescription("Total number of mapping provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &providerMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// record reports one provider call. err is nil on success.
func (m *providerMetrics) record(operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", ProviderName),
		attribute.String("provider.operation", operation),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error.code", string(maperr.CodeOf(err))))
	}

	// Background context so a canceled request still gets recorded.
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
