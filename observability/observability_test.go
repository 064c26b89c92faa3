package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should validate: %v", err)
	}

	cfg.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing service name")
	}
	cfg.ServiceName = "scribe"
	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample rate > 1")
	}
}

func TestSetupDisabled(t *testing.T) {
	tel, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if tel.Metrics == nil {
		t.Fatal("expected metrics bound to the global meter")
	}
	tel.Metrics.RecordPoll(context.Background(), "queued")
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestMetricsRecorded(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(ctx)

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.RecordPoll(ctx, "processing")
	m.RecordPoll(ctx, "processing")
	m.RecordSubmission(ctx, "queued")
	m.JobStarted(ctx)
	m.JobFinished(ctx, "succeeded", 3*time.Second)
	m.RecordOperation(ctx, "scribe", "summarize", "success", 10*time.Millisecond)
	m.RecordError(ctx, "transport", "job.poller")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	polls := findSum(t, rm, "scribe.poll.total")
	if len(polls.DataPoints) != 1 || polls.DataPoints[0].Value != 2 {
		t.Errorf("poll data points = %+v", polls.DataPoints)
	}
	active := findSum(t, rm, "scribe.job.active")
	if len(active.DataPoints) != 1 || active.DataPoints[0].Value != 0 {
		t.Errorf("active jobs = %+v", active.DataPoints)
	}
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s has data type %T", name, m.Data)
			}
			return sum
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Sum[int64]{}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordPoll(ctx, "queued")
	m.RecordSubmission(ctx, "queued")
	m.RecordOperation(ctx, "s", "o", "ok", time.Millisecond)
	m.RecordError(ctx, "c", "x")
	m.JobStarted(ctx)
	m.JobFinished(ctx, "failed", time.Second)
}

func TestSpanHelpers(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanPoll)
	SetSpanAttribute(ctx, AttrTaskID, "task-1")
	SetSpanAttribute(ctx, AttrPolls, 3)
	SetSpanError(ctx, errors.New("boom"))
	SetSpanError(ctx, nil)
	span.End()

	ended := sr.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d", len(ended))
	}
	got := ended[0]
	if got.Name() != SpanPoll {
		t.Errorf("name = %q", got.Name())
	}
	if got.Status().Code != codes.Error || got.Status().Description != "boom" {
		t.Errorf("status = %+v", got.Status())
	}
	want := map[attribute.Key]attribute.Value{
		AttrTaskID: attribute.StringValue("task-1"),
		AttrPolls:  attribute.IntValue(3),
	}
	for _, kv := range got.Attributes() {
		if w, ok := want[kv.Key]; ok {
			if kv.Value != w {
				t.Errorf("%s = %v, want %v", kv.Key, kv.Value, w)
			}
			delete(want, kv.Key)
		}
	}
	if len(want) != 0 {
		t.Errorf("missing attributes: %v", want)
	}
}

func TestSetSpanAttributeWithoutSpan(t *testing.T) {
	SetSpanAttribute(context.Background(), AttrTaskID, "x")
	SetSpanError(context.Background(), errors.New("x"))
}
