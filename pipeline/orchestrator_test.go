package pipeline

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/voicebridge/audio"
	"github.com/kbukum/voicebridge/cache"
	"github.com/kbukum/voicebridge/config"
	"github.com/kbukum/voicebridge/conversation"
	"github.com/kbukum/voicebridge/errors"
	"github.com/kbukum/voicebridge/observability"
	"github.com/kbukum/voicebridge/testutil"
	"github.com/kbukum/voicebridge/translation"
)

type harness struct {
	orch        *Orchestrator
	transcriber *testutil.Transcriber
	translator  *testutil.Translator
	synthesizer *testutil.Synthesizer
	sink        *testutil.Sink
	store       *cache.Cache
	contexts    *conversation.Manager
}

func testConfig() config.Config {
	cfg := config.Config{
		SourceLanguage: "en",
		TargetLanguage: "es",
		ConversationID: "conv-1",
	}
	cfg.Services.Transcription = []string{"whisper"}
	cfg.Services.Translation = []string{"deepl"}
	cfg.Services.Synthesis = []string{"elevenlabs"}
	cfg.ApplyDefaults()
	return cfg
}

func newHarness(t *testing.T, cfg config.Config, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		transcriber: &testutil.Transcriber{Text: "Hello world"},
		translator:  &testutil.Translator{Translated: "Hola mundo"},
		synthesizer: &testutil.Synthesizer{},
		sink:        &testutil.Sink{},
		store:       cache.New(cfg.Cache),
		contexts:    conversation.NewManager(cfg.Context),
	}
	orch, err := New(cfg, append([]Option{
		WithSink(h.sink),
		WithCache(h.store),
		WithConversations(h.contexts),
	}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	orch.Transcribers().Add(h.transcriber)
	orch.Translators().Add(h.translator)
	orch.Synthesizers().Add(h.synthesizer)
	h.orch = orch
	return h
}

func speechSegment() *audio.Segment {
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = 2000
	}
	return audio.NewSegment(samples, audio.DefaultFormat(), "mic-1")
}

func TestProcessAudioFullPipeline(t *testing.T) {
	h := newHarness(t, testConfig())

	res := h.orch.ProcessAudio(context.Background(), speechSegment())

	if !res.Success || res.Stage != StageComplete {
		t.Fatalf("expected complete success, got stage %q err %v", res.Stage, res.Err)
	}
	if res.Transcription == nil || res.Transcription.Text != "Hello world" {
		t.Errorf("transcription = %+v", res.Transcription)
	}
	if res.Translation == nil || res.Translation.TranslatedText != "Hola mundo" {
		t.Errorf("translation = %+v", res.Translation)
	}
	if res.Assessment == nil || res.Assessment.Overall <= 0 {
		t.Errorf("expected a quality assessment, got %+v", res.Assessment)
	}
	if res.Audio == nil {
		t.Error("expected synthesized audio")
	}
	if got := len(h.sink.Emitted()); got != 1 {
		t.Errorf("emitted %d buffers, want 1", got)
	}
}

func TestProcessAudioRejectsEmptySegment(t *testing.T) {
	h := newHarness(t, testConfig())

	res := h.orch.ProcessAudio(context.Background(), audio.NewSegment(nil, audio.DefaultFormat(), "mic-1"))

	if res.Success {
		t.Fatal("empty segment must not succeed")
	}
	if res.Stage != StageValidation {
		t.Errorf("stage = %q, want validation", res.Stage)
	}
	if !errors.Is(res.Err, errors.ErrCodeEmptyAudio) {
		t.Errorf("err = %v, want empty audio", res.Err)
	}
	// No collaborator may have been touched.
	if h.transcriber.Calls() != 0 || h.translator.Calls() != 0 || h.synthesizer.Calls() != 0 {
		t.Error("collaborators were invoked for an empty segment")
	}
}

func TestTranscriptionFailure(t *testing.T) {
	h := newHarness(t, testConfig())
	h.transcriber.Err = stderrors.New("stt down")

	res := h.orch.ProcessAudio(context.Background(), speechSegment())

	if res.Success || res.Stage != StageTranscription {
		t.Fatalf("expected transcription failure, got stage %q", res.Stage)
	}
	if !errors.Is(res.Err, errors.ErrCodeTranscription) {
		t.Errorf("err = %v, want transcription error", res.Err)
	}
	if h.translator.Calls() != 0 {
		t.Error("translation must not run after a transcription failure")
	}
}

func TestTranslationFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Services.Translation = []string{"deepl", "gpt4o"}
	h := newHarness(t, cfg)

	h.translator.Err = stderrors.New("deepl down")
	backup := &testutil.Translator{ServiceName: "gpt4o", Translated: "Hola mundo"}
	h.orch.Translators().Add(backup)

	res := h.orch.ProcessAudio(context.Background(), speechSegment())

	if !res.Success {
		t.Fatalf("expected fallback success, got stage %q err %v", res.Stage, res.Err)
	}
	if res.Translation.Service != "gpt4o" {
		t.Errorf("service = %q, want gpt4o", res.Translation.Service)
	}
	if h.translator.Calls() != 1 || backup.Calls() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", h.translator.Calls(), backup.Calls())
	}
	// Exactly one context entry for the one completed translation.
	if got := len(h.contexts.Entries("conv-1")); got != 1 {
		t.Errorf("context entries = %d, want 1", got)
	}
}

func TestTranslationExhaustsFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Services.Translation = []string{"deepl", "gpt4o"}
	h := newHarness(t, cfg)

	h.translator.Err = stderrors.New("deepl down")
	backup := &testutil.Translator{ServiceName: "gpt4o", Err: stderrors.New("gpt4o down")}
	h.orch.Translators().Add(backup)

	res := h.orch.ProcessAudio(context.Background(), speechSegment())

	if res.Success || res.Stage != StageTranslation {
		t.Fatalf("expected translation failure, got stage %q", res.Stage)
	}
	if !errors.Is(res.Err, errors.ErrCodeTranslation) {
		t.Errorf("err = %v, want translation error", res.Err)
	}
	if got := len(h.contexts.Entries("conv-1")); got != 0 {
		t.Errorf("context entries = %d, want 0 after total failure", got)
	}
}

func TestTranslationTimeoutTriggersFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Services.Translation = []string{"deepl", "gpt4o"}
	cfg.Timeouts.Translation = 30 * time.Millisecond
	h := newHarness(t, cfg)

	h.translator.Delay = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	backup := &testutil.Translator{ServiceName: "gpt4o", Translated: "Hola mundo"}
	h.orch.Translators().Add(backup)

	res := h.orch.ProcessAudio(context.Background(), speechSegment())

	if !res.Success {
		t.Fatalf("expected fallback after timeout, got stage %q err %v", res.Stage, res.Err)
	}
	if res.Translation.Service != "gpt4o" {
		t.Errorf("service = %q, want gpt4o", res.Translation.Service)
	}
}

func TestSynthesisFailureReportsPartialResult(t *testing.T) {
	h := newHarness(t, testConfig())
	h.synthesizer.Err = stderrors.New("tts down")

	res := h.orch.ProcessAudio(context.Background(), speechSegment())

	if res.Success {
		t.Fatal("synthesis failure must not report full success")
	}
	if !res.SynthesisFailed {
		t.Error("expected SynthesisFailed flag")
	}
	if res.Translation == nil || res.Translation.TranslatedText != "Hola mundo" {
		t.Error("partial result must still carry the successful translation")
	}
	if !errors.Is(res.Err, errors.ErrCodeSynthesis) {
		t.Errorf("err = %v, want synthesis error", res.Err)
	}
	if len(h.sink.Emitted()) != 0 {
		t.Error("nothing may be emitted when synthesis fails")
	}
}

func TestCacheSkipsSecondTranslation(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	first := h.orch.ProcessAudio(ctx, speechSegment())
	if !first.Success || first.CacheHit {
		t.Fatalf("first run: success=%v cacheHit=%v", first.Success, first.CacheHit)
	}

	second := h.orch.ProcessAudio(ctx, speechSegment())
	if !second.Success || !second.CacheHit {
		t.Fatalf("second run: success=%v cacheHit=%v", second.Success, second.CacheHit)
	}
	if second.Translation.TranslatedText != "Hola mundo" {
		t.Errorf("cached translation = %q", second.Translation.TranslatedText)
	}
	if h.translator.Calls() != 1 {
		t.Errorf("translator calls = %d, want exactly 1", h.translator.Calls())
	}
	if stats := h.store.Stats(); stats.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", stats.Hits)
	}

	// Both the specific-service key and the "any" mirror must be present.
	base := translation.Request{
		Text:           "Hello world",
		SourceLanguage: "en",
		TargetLanguage: "es",
		Service:        "deepl",
		Options:        translation.Options{Formality: translation.FormalityDefault},
	}
	if _, ok := h.store.Get(ctx, base); !ok {
		t.Error("specific-service entry missing")
	}
	base.Service = translation.ServiceAny
	if _, ok := h.store.Get(ctx, base); !ok {
		t.Error("service-agnostic mirror entry missing")
	}
}

func TestTranslateTextWithoutSession(t *testing.T) {
	h := newHarness(t, testConfig())

	res := h.orch.TranslateText(context.Background(), "Hello world")

	if !res.Success {
		t.Fatalf("TranslateText failed at %q: %v", res.Stage, res.Err)
	}
	if res.Transcription != nil {
		t.Error("text-only path must not report a transcription")
	}
	if res.Translation.TranslatedText != "Hola mundo" {
		t.Errorf("translation = %q", res.Translation.TranslatedText)
	}
	if len(h.sink.Emitted()) != 1 {
		t.Error("expected one emitted buffer")
	}
}

func TestTranslateTextRejectsEmptyInput(t *testing.T) {
	h := newHarness(t, testConfig())

	res := h.orch.TranslateText(context.Background(), "   ")
	if res.Success || res.Err == nil {
		t.Fatal("blank input must fail")
	}
	if h.translator.Calls() != 0 {
		t.Error("no collaborator may run for blank input")
	}
}

func TestStartTwiceReturnsAlreadyRunning(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	if err := h.orch.Start(ctx); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer h.orch.Stop()

	// Process one segment so the session has counters to protect.
	h.orch.ProcessAudio(ctx, speechSegment())
	before := h.orch.Status()

	err := h.orch.Start(ctx)
	if !errors.Is(err, errors.ErrCodeAlreadyRunning) {
		t.Fatalf("second Start() error = %v, want AlreadyRunning", err)
	}

	after := h.orch.Status()
	if after.SegmentsProcessed != before.SegmentsProcessed || !after.Running {
		t.Error("rejected start must leave the active session untouched")
	}
}

func TestStopReturnsToIdle(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	if err := h.orch.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if h.orch.State() != StateRunning {
		t.Fatalf("state = %q, want running", h.orch.State())
	}
	if err := h.orch.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if h.orch.State() != StateIdle {
		t.Errorf("state = %q, want idle", h.orch.State())
	}
	// A second stop has nothing to stop.
	if err := h.orch.Stop(); err == nil {
		t.Error("stopping an idle pipeline must fail")
	}
}

func TestLifecycleSubscription(t *testing.T) {
	h := newHarness(t, testConfig())
	ch := h.orch.Subscribe()
	ctx := context.Background()

	if err := h.orch.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.orch.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []State{StateStarting, StateRunning, StateStopping, StateIdle}
	for _, expected := range want {
		select {
		case change := <-ch:
			if change.To != expected {
				t.Errorf("transition to %q, want %q", change.To, expected)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for transition to %q", expected)
		}
	}
}

func TestUpdateConfiguration(t *testing.T) {
	h := newHarness(t, testConfig())

	target := "fr"
	if err := h.orch.UpdateConfiguration(config.Partial{TargetLanguage: &target}); err != nil {
		t.Fatalf("UpdateConfiguration() error = %v", err)
	}
	if got := h.orch.Config().TargetLanguage; got != "fr" {
		t.Errorf("target language = %q, want fr", got)
	}

	bad := "xx"
	err := h.orch.UpdateConfiguration(config.Partial{TargetLanguage: &bad})
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
	if got := h.orch.Config().TargetLanguage; got != "fr" {
		t.Errorf("failed update mutated config: target = %q", got)
	}
}

func TestSessionMetrics(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	if err := h.orch.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.orch.Stop()

	h.orch.ProcessAudio(ctx, speechSegment())
	h.orch.ProcessAudio(ctx, audio.NewSegment(nil, audio.DefaultFormat(), "mic-1"))

	m := h.orch.Metrics()
	if m.SegmentsProcessed != 2 {
		t.Errorf("segments = %d, want 2", m.SegmentsProcessed)
	}
	if m.SuccessRate != 0.5 || m.ErrorRate != 0.5 {
		t.Errorf("rates = %f/%f, want 0.5/0.5", m.SuccessRate, m.ErrorRate)
	}
	if m.AverageLatency <= 0 {
		t.Error("average latency must be positive")
	}

	st := h.orch.Status()
	if !st.Running || st.TranslationsSucceeded != 1 || st.TranslationsFailed != 1 {
		t.Errorf("status = %+v", st)
	}
}

func TestRedisConfiguredCacheStore(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() { mini.Close() })

	cfg := testConfig()
	cfg.Redis.Addr = mini.Addr()

	orch, err := New(cfg, WithSink(&testutil.Sink{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	translator := &testutil.Translator{Translated: "Hola mundo"}
	orch.Translators().Add(translator)
	orch.Synthesizers().Add(&testutil.Synthesizer{})

	first := orch.TranslateText(context.Background(), "Hello world")
	if !first.Success {
		t.Fatalf("first translate failed: stage %q err %v", first.Stage, first.Err)
	}
	// Specific-service entry plus the "any" mirror, both in redis.
	if got := len(mini.Keys()); got != 2 {
		t.Fatalf("redis keys = %d, want 2", got)
	}

	second := orch.TranslateText(context.Background(), "Hello world")
	if !second.Success || !second.CacheHit {
		t.Fatalf("expected cache hit, got success=%v hit=%v err=%v", second.Success, second.CacheHit, second.Err)
	}
	if translator.Calls() != 1 {
		t.Errorf("translator calls = %d, want 1", translator.Calls())
	}
}

func TestTranslationRetryRecoversTransientFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Resilience.Translation.Retry = config.RetryPolicy{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
	}
	h := newHarness(t, cfg)
	h.translator.FailFirst = 1

	res := h.orch.ProcessAudio(context.Background(), speechSegment())

	if !res.Success {
		t.Fatalf("expected retry to recover, got stage %q err %v", res.Stage, res.Err)
	}
	if h.translator.Calls() != 2 {
		t.Errorf("translator calls = %d, want 2 (initial + retry)", h.translator.Calls())
	}
	if res.Translation.Service != "deepl" {
		t.Errorf("service = %q, want deepl (no fallback)", res.Translation.Service)
	}
}

func TestCircuitBreakerSkipsOpenService(t *testing.T) {
	cfg := testConfig()
	cfg.Services.Translation = []string{"deepl", "gpt4o"}
	cfg.Resilience.Translation.Breaker = config.BreakerPolicy{
		MaxFailures: 1,
		Cooldown:    time.Minute,
	}
	h := newHarness(t, cfg)
	h.translator.Err = stderrors.New("deepl down")
	backup := &testutil.Translator{ServiceName: "gpt4o", Translated: "Hola mundo"}
	h.orch.Translators().Add(backup)

	first := h.orch.TranslateText(context.Background(), "First line")
	if !first.Success {
		t.Fatalf("first translate failed: %v", first.Err)
	}
	if h.translator.Calls() != 1 {
		t.Fatalf("deepl calls = %d, want 1", h.translator.Calls())
	}

	// deepl's breaker is open now; the walk must go straight to gpt4o
	// without another deepl call.
	second := h.orch.TranslateText(context.Background(), "Second line")
	if !second.Success {
		t.Fatalf("second translate failed: %v", second.Err)
	}
	if h.translator.Calls() != 1 {
		t.Errorf("deepl calls = %d after breaker opened, want 1", h.translator.Calls())
	}
	if backup.Calls() != 2 {
		t.Errorf("gpt4o calls = %d, want 2", backup.Calls())
	}
}

func fallbackCount(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "pipeline.translation.fallback" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestFallbackMetricCountsRealAttempts(t *testing.T) {
	t.Run("unregistered top rank is not a fallback", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("pipeline-test")
		pm, err := observability.NewPipelineMetrics(meter)
		if err != nil {
			t.Fatalf("NewPipelineMetrics: %v", err)
		}

		cfg := testConfig()
		cfg.Services.Translation = []string{"google", "deepl"}
		h := newHarness(t, cfg, WithMetrics(pm))

		res := h.orch.TranslateText(context.Background(), "Hello world")
		if !res.Success {
			t.Fatalf("translate failed: %v", res.Err)
		}
		if got := fallbackCount(t, reader); got != 0 {
			t.Errorf("fallback count = %d for the first real attempt, want 0", got)
		}
	})

	t.Run("failed attempt then fallback counts once", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("pipeline-test")
		pm, err := observability.NewPipelineMetrics(meter)
		if err != nil {
			t.Fatalf("NewPipelineMetrics: %v", err)
		}

		cfg := testConfig()
		cfg.Services.Translation = []string{"deepl", "gpt4o"}
		h := newHarness(t, cfg, WithMetrics(pm))
		h.translator.Err = stderrors.New("deepl down")
		h.orch.Translators().Add(&testutil.Translator{ServiceName: "gpt4o", Translated: "Hola mundo"})

		res := h.orch.TranslateText(context.Background(), "Hello world")
		if !res.Success {
			t.Fatalf("translate failed: %v", res.Err)
		}
		if got := fallbackCount(t, reader); got != 1 {
			t.Errorf("fallback count = %d, want 1", got)
		}
	})
}
