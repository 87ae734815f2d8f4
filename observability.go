// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package urlmatch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies this package to whatever TracerProvider/
// MeterProvider the caller supplies, the same way the teacher's
// tracing.go/metrics.go name themselves to their otel providers.
const instrumentationName = "github.com/go-urlmatch/urlmatch"

// observability holds the otel instrumentation wired in via
// WithTracerProvider/WithMeterProvider. Both are optional and independent:
// a Matcher built with neither carries a nil *observability, and every
// method on it is a no-op, so tracing/metrics are strictly pay-for-what-
// you-use (§1: the host's observability pipeline is out of scope, only
// the hooks into it are in scope).
type observability struct {
	tracer trace.Tracer

	matchCounter metric.Int64Counter
	matchLatency metric.Float64Histogram
	buildLatency metric.Float64Histogram
}

// newObservability returns nil if cfg configured neither provider.
func newObservability(cfg config) *observability {
	if cfg.tracerProvider == nil && cfg.meterProvider == nil {
		return nil
	}

	o := &observability{}
	if cfg.tracerProvider != nil {
		o.tracer = cfg.tracerProvider.Tracer(instrumentationName)
	}
	if cfg.meterProvider != nil {
		meter := cfg.meterProvider.Meter(instrumentationName)
		// Instrument creation only fails on a malformed name/unit, never
		// on provider state; instrumentationName and the units below are
		// fixed and known-good, so these errors are deliberately dropped
		// rather than threaded back through Build.
		o.matchCounter, _ = meter.Int64Counter("urlmatch.match.count",
			metric.WithDescription("Number of Match calls, by outcome."))
		o.matchLatency, _ = meter.Float64Histogram("urlmatch.match.duration",
			metric.WithDescription("Match call duration."), metric.WithUnit("ms"))
		o.buildLatency, _ = meter.Float64Histogram("urlmatch.build.duration",
			metric.WithDescription("Build call duration."), metric.WithUnit("ms"))
	}
	return o
}

// recordMatch wraps one Matcher.Match call. It uses context.Background()
// for the span/metric context rather than threading a caller context
// through Match's signature: matching is pure CPU work over an in-memory
// route table, never an I/O call a caller would want to cancel, so Match
// stays context-free like the rest of the Engine interface.
func (o *observability) recordMatch(path string, matched bool, dur time.Duration) {
	if o == nil {
		return
	}
	ctx := context.Background()
	attrs := attribute.Bool("urlmatch.matched", matched)

	if o.tracer != nil {
		_, span := o.tracer.Start(ctx, "urlmatch.Match")
		span.SetAttributes(attribute.String("urlmatch.path", path), attrs)
		span.End()
	}
	if o.matchCounter != nil {
		o.matchCounter.Add(ctx, 1, metric.WithAttributes(attrs))
	}
	if o.matchLatency != nil {
		o.matchLatency.Record(ctx, durationMillis(dur), metric.WithAttributes(attrs))
	}
}

// recordBuild wraps one Builder.Build call.
func (o *observability) recordBuild(kind EngineKind, err error, dur time.Duration) {
	if o == nil {
		return
	}
	ctx := context.Background()

	if o.tracer != nil {
		_, span := o.tracer.Start(ctx, "urlmatch.Build")
		span.SetAttributes(attribute.Int("urlmatch.engine", int(kind)))
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
	if o.buildLatency != nil {
		o.buildLatency.Record(ctx, durationMillis(dur))
	}
}

func durationMillis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
