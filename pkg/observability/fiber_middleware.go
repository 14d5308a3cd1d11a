package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/willsigmon/boppa/pkg/reqctx"
)

const (
	instrumentationName = "github.com/willsigmon/boppa/pkg/observability"

	HeaderTraceID = "X-Trace-Id"
)

// MiddlewareConfig tunes FiberMiddleware.
type MiddlewareConfig struct {
	ServiceName string
	// SkipPaths are not traced or counted, e.g. probes and the metrics endpoint.
	SkipPaths []string
}

// FiberMiddleware traces every request and records request count and
// duration by route.
func FiberMiddleware(cfg MiddlewareConfig) fiber.Handler {
	tracer := otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)

	requestCounter, _ := meter.Int64Counter(
		"http_server_request_count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"http_server_request_duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		ctx := otel.GetTextMapPropagator().Extract(
			c.Context(),
			propagation.HeaderCarrier(c.GetReqHeaders()),
		)

		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Method()),
			attribute.String("http.target", c.Path()),
			attribute.String("http.scheme", c.Protocol()),
			attribute.String("net.host.name", c.Hostname()),
			attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
			attribute.String("http.client_ip", c.IP()),
		}
		if cfg.ServiceName != "" {
			attrs = append(attrs, attribute.String("service.name", cfg.ServiceName))
		}
		if rid := reqctx.RequestIDFromContext(c.Context()); rid != "" {
			attrs = append(attrs, attribute.String("http.request_id", rid))
		}

		// The route is only known after routing, so the span is renamed below.
		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		c.SetContext(ctx)

		if span.SpanContext().HasTraceID() {
			c.Set(HeaderTraceID, span.SpanContext().TraceID().String())
		}

		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app's error handler write the response so the status is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				span.RecordError(herr)
			}
		}
		duration := float64(time.Since(start).Microseconds()) / 1000

		route := c.Route().Path
		statusCode := c.Response().StatusCode()

		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", statusCode),
			attribute.Float64("http.duration_ms", duration),
		)

		mattrs := metric.WithAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", statusCode),
		)
		requestCounter.Add(ctx, 1, mattrs)
		requestDuration.Record(ctx, duration, mattrs)

		if statusCode >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(statusCode))
			if err != nil {
				span.RecordError(err)
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return nil
	}
}
