package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/voicebridge/audio"
	"github.com/kbukum/voicebridge/cache"
	"github.com/kbukum/voicebridge/config"
	"github.com/kbukum/voicebridge/conversation"
	"github.com/kbukum/voicebridge/errors"
	"github.com/kbukum/voicebridge/logger"
	"github.com/kbukum/voicebridge/observability"
	"github.com/kbukum/voicebridge/output"
	"github.com/kbukum/voicebridge/provider"
	"github.com/kbukum/voicebridge/quality"
	"github.com/kbukum/voicebridge/resilience"
	"github.com/kbukum/voicebridge/synthesis"
	"github.com/kbukum/voicebridge/transcription"
	"github.com/kbukum/voicebridge/translation"
)

// Orchestrator drives the per-segment pipeline and owns the session
// lifecycle. Collaborators are injected at construction; registering
// providers on the returned managers is the caller's job.
type Orchestrator struct {
	machine *stateMachine
	log     *logger.Logger
	metrics *observability.PipelineMetrics

	transcribers *provider.Manager[transcription.Provider]
	translators  *provider.Manager[translation.Provider]
	synthesizers *provider.Manager[synthesis.Provider]
	sink         output.Sink
	capturer     *audio.Capturer

	store    cache.Store
	contexts *conversation.Manager
	assessor *quality.Assessor

	mu      sync.Mutex
	cfg     config.Config
	session *session
	cancel  context.CancelFunc
	sttRes  *provider.ResilienceState
	// trRes holds one resilience state per ranked translation service,
	// so a breaker opened on one service never gates the others.
	trRes    map[string]*provider.ResilienceState
	synthRes *provider.ResilienceState
}

// Option overrides a default collaborator.
type Option func(*Orchestrator)

// WithTranscribers replaces the transcription provider manager.
func WithTranscribers(m *provider.Manager[transcription.Provider]) Option {
	return func(o *Orchestrator) { o.transcribers = m }
}

// WithTranslators replaces the translation provider manager.
func WithTranslators(m *provider.Manager[translation.Provider]) Option {
	return func(o *Orchestrator) { o.translators = m }
}

// WithSynthesizers replaces the synthesis provider manager.
func WithSynthesizers(m *provider.Manager[synthesis.Provider]) Option {
	return func(o *Orchestrator) { o.synthesizers = m }
}

// WithSink sets the output routing collaborator.
func WithSink(s output.Sink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithCapturer sets the audio capture collaborator. Without one the
// orchestrator only serves TranslateText and direct ProcessAudio calls.
func WithCapturer(c *audio.Capturer) Option {
	return func(o *Orchestrator) { o.capturer = c }
}

// WithCache replaces the translation cache store.
func WithCache(s cache.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithConversations replaces the conversation context manager.
func WithConversations(m *conversation.Manager) Option {
	return func(o *Orchestrator) { o.contexts = m }
}

// WithAssessor replaces the quality assessor.
func WithAssessor(a *quality.Assessor) Option {
	return func(o *Orchestrator) { o.assessor = a }
}

// WithMetrics attaches pipeline metric instruments.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New validates the configuration and builds an orchestrator with
// in-memory defaults for every collaborator not overridden by options.
func New(cfg config.Config, opts ...Option) (*Orchestrator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		machine: newStateMachine(),
		log:     logger.Get("pipeline"),
		cfg:     cfg,
		sink:    output.Discard{},
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.transcribers == nil {
		o.transcribers = transcription.NewManager()
	}
	if o.translators == nil {
		o.translators = translation.NewManager(translation.WithRanking(cfg.Services.Translation...))
	}
	if o.synthesizers == nil {
		o.synthesizers = synthesis.NewManager(&provider.RankedSelector[synthesis.Provider]{
			Ranking: cfg.Services.Synthesis,
		})
	}
	if o.store == nil {
		if cfg.Redis.Addr != "" {
			o.store = cache.NewRedisStore(cache.RedisConfig{
				Addr:      cfg.Redis.Addr,
				Password:  cfg.Redis.Password,
				DB:        cfg.Redis.DB,
				KeyPrefix: cfg.Redis.KeyPrefix,
				TTL:       cfg.Cache.TTL,
			})
		} else {
			o.store = cache.New(cfg.Cache)
		}
	}
	if o.contexts == nil {
		o.contexts = conversation.NewManager(cfg.Context)
	}
	if o.assessor == nil {
		o.assessor = quality.NewAssessor(quality.DefaultConfig())
	}
	o.rebuildResilienceLocked()
	return o, nil
}

// Transcribers exposes the transcription manager for provider registration.
func (o *Orchestrator) Transcribers() *provider.Manager[transcription.Provider] {
	return o.transcribers
}

// Translators exposes the translation manager for provider registration.
func (o *Orchestrator) Translators() *provider.Manager[translation.Provider] {
	return o.translators
}

// Synthesizers exposes the synthesis manager for provider registration.
func (o *Orchestrator) Synthesizers() *provider.Manager[synthesis.Provider] {
	return o.synthesizers
}

// Subscribe returns a channel receiving lifecycle transitions. Slow
// consumers miss events rather than blocking the pipeline.
func (o *Orchestrator) Subscribe() <-chan StateChange {
	return o.machine.subscribe()
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.machine.State()
}

// Start opens capture and transitions to Running. A second Start
// without an intervening Stop fails with AlreadyRunning and leaves the
// active session untouched. A capture failure rolls the lifecycle back
// to Idle, never leaving the session partially started.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.machine.to(StateStarting); err != nil {
		return err
	}

	o.mu.Lock()
	cfg := o.cfg.Clone()
	sess := &session{
		startedAt:      time.Now(),
		conversationID: cfg.ConversationID,
	}
	if sess.conversationID == "" {
		sess.conversationID = uuid.NewString()
	}
	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.session = sess
	o.cancel = cancel
	o.mu.Unlock()

	if o.capturer != nil {
		onSegment := func(seg *audio.Segment) {
			o.handleSegment(sessCtx, seg)
		}
		if err := o.capturer.Start(sessCtx, cfg.InputDeviceID, onSegment); err != nil {
			o.mu.Lock()
			o.session = nil
			o.cancel = nil
			o.mu.Unlock()
			cancel()
			if terr := o.machine.to(StateIdle); terr != nil {
				o.log.Error("lifecycle rollback failed", logger.ErrorFields("start", terr))
			}
			return err
		}
	}

	if err := o.machine.to(StateRunning); err != nil {
		return err
	}
	o.log.Info("session started", map[string]interface{}{
		logger.FieldConversationID: sess.conversationID,
		logger.FieldSourceLang:     cfg.SourceLanguage,
		logger.FieldTargetLang:     cfg.TargetLanguage,
	})
	return nil
}

// Stop cancels in-flight segments, closes capture, and returns to Idle.
// Collaborator errors during shutdown are logged, never propagated:
// cleanup always completes.
func (o *Orchestrator) Stop() error {
	if err := o.machine.to(StateStopping); err != nil {
		return err
	}

	o.mu.Lock()
	cancel := o.cancel
	o.session = nil
	o.cancel = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if o.capturer != nil {
		o.capturer.Stop()
	}
	if err := o.machine.to(StateIdle); err != nil {
		o.log.Error("lifecycle transition failed", logger.ErrorFields("stop", err))
	}
	o.log.Info("session stopped")
	return nil
}

// UpdateConfiguration merges a partial update into the active
// configuration. The merge is all-or-nothing: on a validation failure
// the previous configuration stays in force and the returned error
// names the offending field.
func (o *Orchestrator) UpdateConfiguration(p config.Partial) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	merged, err := o.cfg.Merge(p)
	if err != nil {
		return err
	}
	o.cfg = merged
	o.rebuildResilienceLocked()
	o.log.Info("configuration updated", map[string]interface{}{
		logger.FieldSourceLang: merged.SourceLanguage,
		logger.FieldTargetLang: merged.TargetLanguage,
	})
	return nil
}

// Config returns a copy of the active configuration.
func (o *Orchestrator) Config() config.Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg.Clone()
}

// Status returns a non-blocking snapshot of lifecycle and counters.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()
	return sess.snapshot(o.machine.State())
}

// Metrics returns a non-blocking performance snapshot of the active
// session, including cache statistics.
func (o *Orchestrator) Metrics() PerformanceMetrics {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()
	return sess.metrics(o.store.Stats())
}

// rebuildResilienceLocked rebuilds the per-collaborator resilience states
// from the current config. Breaker state does not survive a rebuild.
func (o *Orchestrator) rebuildResilienceLocked() {
	o.sttRes = buildResilience(o.cfg.Timeouts.Transcription, o.cfg.Resilience.Transcription, "transcription")
	o.synthRes = buildResilience(o.cfg.Timeouts.Synthesis, o.cfg.Resilience.Synthesis, "synthesis")
	trRes := make(map[string]*provider.ResilienceState, len(o.cfg.Services.Translation))
	for _, name := range o.cfg.Services.Translation {
		trRes[name] = buildResilience(o.cfg.Timeouts.Translation, o.cfg.Resilience.Translation, name)
	}
	o.trRes = trRes
}

func buildResilience(timeout time.Duration, policy config.ResiliencePolicy, name string) *provider.ResilienceState {
	rc := provider.ResilienceConfig{Timeout: timeout}
	if policy.Retry.MaxAttempts > 1 {
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = policy.Retry.MaxAttempts
		if policy.Retry.InitialBackoff > 0 {
			retry.InitialBackoff = policy.Retry.InitialBackoff
		}
		rc.Retry = &retry
	}
	if policy.Breaker.MaxFailures > 0 {
		cb := resilience.DefaultCircuitBreakerConfig(name)
		cb.MaxFailures = policy.Breaker.MaxFailures
		if policy.Breaker.Cooldown > 0 {
			cb.Timeout = policy.Breaker.Cooldown
		}
		rc.CircuitBreaker = &cb
	}
	return provider.BuildResilience(rc)
}

func (o *Orchestrator) handleSegment(ctx context.Context, seg *audio.Segment) {
	res := o.ProcessAudio(ctx, seg)
	if res.Err != nil {
		o.log.WithSegment(seg.ID).Warn("segment failed", map[string]interface{}{
			logger.FieldStage: string(res.Stage),
			logger.FieldError: res.Err.Error(),
		})
	}
}

// ProcessAudio runs the full per-segment pipeline and returns a
// structured result. Failures are reported in the result, not as a
// second return value, so partial data survives.
func (o *Orchestrator) ProcessAudio(ctx context.Context, seg *audio.Segment) *Result {
	started := time.Now()
	o.metrics.RecordSegmentStart(ctx)

	res := o.process(ctx, seg)
	res.Latency = time.Since(started)

	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()
	if sess != nil {
		sess.recordResult(res)
	}

	status := "failure"
	if res.Success {
		status = "success"
	}
	o.metrics.RecordSegmentEnd(ctx, status, res.Latency)
	return res
}

func (o *Orchestrator) process(ctx context.Context, seg *audio.Segment) *Result {
	if seg.Empty() {
		return failedAt(StageValidation, errors.EmptyAudio())
	}

	o.mu.Lock()
	cfg := o.cfg.Clone()
	sttRes, trRes, synthRes := o.sttRes, o.trRes, o.synthRes
	conversationID := cfg.ConversationID
	if o.session != nil {
		conversationID = o.session.conversationID
	}
	o.mu.Unlock()

	// Stage 1: transcription. Single collaborator call, no fallback at
	// this level.
	stt, err := o.firstTranscriber(cfg.Services.Transcription)
	if err != nil {
		return failedAt(StageTranscription, err)
	}
	stageStart := time.Now()
	tr, err := provider.Execute(ctx, sttRes, "transcribe", func(ctx context.Context) (*transcription.Result, error) {
		return stt.Transcribe(ctx, transcription.Request{
			Samples:       seg.Samples,
			SampleRate:    seg.Format.SampleRate,
			Channels:      seg.Format.Channels,
			Language:      cfg.SourceLanguage,
			CorrelationID: seg.ID,
		})
	})
	o.metrics.RecordStage(ctx, string(StageTranscription), stt.Name(), statusOf(err), time.Since(stageStart))
	if err != nil {
		o.metrics.RecordFailure(ctx, string(StageTranscription), stt.Name())
		return failedAt(StageTranscription, errors.Transcription(stt.Name(), err))
	}
	if strings.TrimSpace(tr.Text) == "" {
		return failedAt(StageTranscription, errors.Transcription(stt.Name(), errors.EmptyAudio()))
	}

	res := &Result{Transcription: tr}
	o.completeFromText(ctx, cfg, trRes, synthRes, conversationID, tr.Text, seg.ID, res)
	return res
}

// TranslateText runs the translate → synthesize → emit path for plain
// text, without requiring a live capture session.
func (o *Orchestrator) TranslateText(ctx context.Context, text string) *Result {
	started := time.Now()

	o.mu.Lock()
	cfg := o.cfg.Clone()
	trRes, synthRes := o.trRes, o.synthRes
	conversationID := cfg.ConversationID
	if o.session != nil {
		conversationID = o.session.conversationID
	}
	o.mu.Unlock()

	res := &Result{}
	if strings.TrimSpace(text) == "" {
		res.Stage = StageValidation
		res.Err = errors.Validation("text is required")
	} else {
		o.completeFromText(ctx, cfg, trRes, synthRes, conversationID, text, uuid.NewString(), res)
	}
	res.Latency = time.Since(started)
	return res
}

// completeFromText drives translation, quality assessment, synthesis,
// and output for already-transcribed text, filling res in place.
func (o *Orchestrator) completeFromText(ctx context.Context, cfg config.Config, trRes map[string]*provider.ResilienceState, synthRes *provider.ResilienceState, conversationID, text, correlationID string, res *Result) {
	tl, assessment, cacheHit, err := o.translate(ctx, cfg, trRes, conversationID, text)
	if err != nil {
		res.Stage = StageTranslation
		res.Err = err
		return
	}
	res.Translation = tl
	res.Assessment = assessment
	res.CacheHit = cacheHit

	// Stage: synthesis. An audio-only failure still reports the
	// successful translation.
	synth, err := o.firstSynthesizer(cfg.Services.Synthesis)
	if err != nil {
		res.Stage = StageSynthesis
		res.SynthesisFailed = true
		res.Err = err
		return
	}
	stageStart := time.Now()
	audioOut, err := provider.Execute(ctx, synthRes, "synthesize", func(ctx context.Context) (*synthesis.Audio, error) {
		return synth.Synthesize(ctx, synthesis.Request{
			Text:          tl.TranslatedText,
			Language:      tl.TargetLanguage,
			CorrelationID: correlationID,
		})
	})
	o.metrics.RecordStage(ctx, string(StageSynthesis), synth.Name(), statusOf(err), time.Since(stageStart))
	if err != nil {
		o.metrics.RecordFailure(ctx, string(StageSynthesis), synth.Name())
		res.Stage = StageSynthesis
		res.SynthesisFailed = true
		res.Err = errors.Synthesis(synth.Name(), err)
		return
	}
	res.Audio = audioOut

	// Stage: output. Results produced after the session stopped are
	// discarded instead of emitted. Emit failures are logged, never
	// fatal.
	if ctx.Err() == nil {
		if err := o.sink.Emit(ctx, audioOut); err != nil {
			o.metrics.RecordFailure(ctx, string(StageOutput), o.sink.Name())
			o.log.Warn("output emit failed", logger.ErrorFields("emit", errors.Output(err)))
		}
	}

	res.Success = true
	res.Stage = StageComplete
}

// translate resolves a translation through the cache or the ranked
// fallback walk. On an external success it assesses quality, appends
// the exchange to the conversation context, and stores the result.
func (o *Orchestrator) translate(ctx context.Context, cfg config.Config, trRes map[string]*provider.ResilienceState, conversationID, text string) (*translation.Result, *quality.Assessment, bool, error) {
	lookup := translation.Request{
		Text:           text,
		SourceLanguage: cfg.SourceLanguage,
		TargetLanguage: cfg.TargetLanguage,
		Service:        translation.ServiceAny,
		Options: translation.Options{
			Formality:          cfg.Translation.Formality,
			PreserveFormatting: cfg.Translation.PreserveFormatting,
		},
	}
	if cached, ok := o.store.GetWithFallback(ctx, lookup); ok {
		o.metrics.RecordCacheLookup(ctx, true)
		return cached, nil, true, nil
	}
	o.metrics.RecordCacheLookup(ctx, false)

	var contextStr string
	if conversationID != "" {
		contextStr = o.contexts.GetContext(conversationID)
	}

	var (
		tried   []string
		lastErr error
	)
	attempts := 0
	for _, name := range cfg.Services.Translation {
		p, err := o.translators.GetByName(name)
		if err != nil {
			continue
		}
		// A fallback is a second real attempt, not a skipped name in
		// the configured ranking.
		if attempts > 0 {
			o.metrics.RecordFallback(ctx, name)
		}
		attempts++

		req := lookup
		req.Service = name
		req.Context = contextStr
		req.DomainContext = cfg.Translation.DomainContext

		stageStart := time.Now()
		result, err := provider.Execute(ctx, trRes[name], "translate", func(ctx context.Context) (*translation.Result, error) {
			return p.Translate(ctx, req)
		})
		o.metrics.RecordStage(ctx, string(StageTranslation), name, statusOf(err), time.Since(stageStart))
		if err != nil {
			o.metrics.RecordFailure(ctx, string(StageTranslation), name)
			tried = append(tried, name)
			lastErr = err
			o.log.Debug("translation attempt failed", map[string]interface{}{
				logger.FieldService: name,
				logger.FieldError:   err.Error(),
			})
			continue
		}

		assessment := o.assessor.Assess(quality.Input{
			Original:      text,
			Translated:    result.TranslatedText,
			FromLanguage:  cfg.SourceLanguage,
			ToLanguage:    cfg.TargetLanguage,
			Service:       result.Service,
			Context:       contextStr,
			DomainContext: cfg.Translation.DomainContext,
		})

		if conversationID != "" {
			o.contexts.AddEntry(conversationID, conversation.Entry{
				Original:   text,
				Translated: result.TranslatedText,
				Direction:  conversation.DirectionForward,
			})
		}
		o.store.Set(ctx, req, result)
		return result, &assessment, false, nil
	}

	if len(tried) == 0 {
		return nil, nil, false, errors.New(errors.ErrCodeTranslation, "no translation service available")
	}
	return nil, nil, false, errors.TranslationExhausted(tried, lastErr)
}

func (o *Orchestrator) firstTranscriber(ranking []string) (transcription.Provider, error) {
	for _, name := range ranking {
		if p, err := o.transcribers.GetByName(name); err == nil {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodeTranscription, "no transcription service available")
}

func (o *Orchestrator) firstSynthesizer(ranking []string) (synthesis.Provider, error) {
	for _, name := range ranking {
		if p, err := o.synthesizers.GetByName(name); err == nil {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodeSynthesis, "no synthesis service available")
}

func statusOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
