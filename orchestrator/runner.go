package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/transcriptflow/chunk"
	"github.com/skillsenselab/transcriptflow/dispatch"
	"github.com/skillsenselab/transcriptflow/errors"
	"github.com/skillsenselab/transcriptflow/logger"
	"github.com/skillsenselab/transcriptflow/observability"
	"github.com/skillsenselab/transcriptflow/resilience"
	"github.com/skillsenselab/transcriptflow/segment"
	"github.com/skillsenselab/transcriptflow/store"
	"github.com/skillsenselab/transcriptflow/transcriber"
	"github.com/skillsenselab/transcriptflow/transcript"
)

// RunRequest identifies the source file and its context metadata.
type RunRequest struct {
	Bucket   string            `json:"bucket"`
	Key      string            `json:"key"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Deps collects the collaborators a Runner drives.
type Deps struct {
	Provider   transcriber.Provider
	Store      store.Store
	Dispatcher *dispatch.Dispatcher
	Extractor  *segment.Extractor
	Registry   *Registry
	Metrics    *Metrics
	Log        *logger.Logger
}

// Runner executes the pipeline for one source file at a time per file.
type Runner struct {
	cfg    Config
	deps   Deps
	log    *logger.Logger
	tracer trace.Tracer
}

// NewRunner creates a runner over the given dependencies.
func NewRunner(cfg Config, deps Deps) (*Runner, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Provider == nil || deps.Store == nil || deps.Dispatcher == nil ||
		deps.Extractor == nil || deps.Registry == nil || deps.Log == nil {
		return nil, fmt.Errorf("orchestrator: missing dependency")
	}
	return &Runner{
		cfg:    cfg,
		deps:   deps,
		log:    deps.Log.WithComponent("orchestrator"),
		tracer: observability.Tracer("orchestrator"),
	}, nil
}

// Run drives the file through Transcribing, Segmenting, and Dispatching
// and returns the terminal execution record. Transient stage errors are
// retried within the stage budget; malformed input and exhausted
// budgets end the run in Failed with the owning stage's classification.
func (r *Runner) Run(ctx context.Context, req RunRequest) (Execution, error) {
	exec, err := r.deps.Registry.Begin(req.Bucket, req.Key)
	if err != nil {
		return Execution{}, err
	}
	return r.drive(ctx, exec, req)
}

// Start registers the execution and drives it in the background. The
// returned snapshot reflects the freshly started run; progress is
// observable through the registry.
func (r *Runner) Start(ctx context.Context, req RunRequest) (Execution, error) {
	exec, err := r.deps.Registry.Begin(req.Bucket, req.Key)
	if err != nil {
		return Execution{}, err
	}
	snap := exec.snapshot()
	go func() {
		if _, err := r.drive(context.WithoutCancel(ctx), exec, req); err != nil {
			r.log.WithFile(req.Key).Debug("Background run ended with failure", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()
	return snap, nil
}

func (r *Runner) drive(ctx context.Context, exec *Execution, req RunRequest) (Execution, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("pipeline.file", req.Key),
		attribute.String("pipeline.bucket", req.Bucket),
	))
	defer span.End()

	log := r.log.WithFile(req.Key)
	log.Info("Pipeline run started", map[string]interface{}{
		logger.FieldBucket: req.Bucket,
	})
	r.deps.Metrics.RecordRunStarted(ctx)

	result, err := r.transcribe(ctx, exec, req)
	if err != nil {
		return r.finishFailed(ctx, exec, errors.ClassTranscription, err)
	}
	if err := r.deps.Registry.advance(exec, EventTranscribed); err != nil {
		return r.finishFailed(ctx, exec, errors.ClassTranscription, err)
	}

	chunks, err := r.segmentAndChunk(ctx, exec, req, result)
	if err != nil {
		return r.finishFailed(ctx, exec, errors.ClassSegmentation, err)
	}
	if err := r.deps.Registry.advance(exec, EventSegmented); err != nil {
		return r.finishFailed(ctx, exec, errors.ClassSegmentation, err)
	}

	if err := r.dispatch(ctx, exec, chunks); err != nil {
		return r.finishFailed(ctx, exec, errors.ClassDispatch, err)
	}
	if err := r.deps.Registry.advance(exec, EventDispatched); err != nil {
		return r.finishFailed(ctx, exec, errors.ClassDispatch, err)
	}

	r.deps.Metrics.RecordRunCompleted(ctx, StageSucceeded, "")
	log.Info("Pipeline run succeeded", map[string]interface{}{
		logger.FieldCount: len(chunks),
	})
	snap, _ := r.deps.Registry.Get(req.Key)
	return snap, nil
}

// transcribe runs the recognition stage with retry and persists the
// result document.
func (r *Runner) transcribe(ctx context.Context, exec *Execution, req RunRequest) (*transcript.Result, error) {
	ctx, span := r.stageSpan(ctx, StageTranscribing)
	defer span.End()

	start := time.Now()
	pol := r.cfg.Transcription.policy()
	pol.OnRetry = r.onRetry(StageTranscribing, req.Key)

	result, attempts, err := resilience.Retry(ctx, pol, func(ctx context.Context) (*transcript.Result, error) {
		attemptCtx, cancel := r.boundAttempt(ctx, r.cfg.Transcription)
		defer cancel()
		return r.deps.Provider.Transcribe(attemptCtx, transcriber.Request{
			Bucket: req.Bucket,
			Key:    req.Key,
		})
	})
	r.deps.Registry.recordAttempt(exec, StageTranscribing, attempts)
	r.deps.Metrics.RecordStage(ctx, StageTranscribing, attempts, time.Since(start))
	span.SetAttributes(attribute.Int("stage.attempts", attempts))
	if err != nil {
		return nil, r.failSpan(span, r.exhaust(errors.ClassTranscription, attempts, pol.MaxAttempts, err))
	}
	r.deps.Registry.setJob(exec, result.JobName)

	key := r.cfg.ResultsPrefix + transcriber.BaseName(req.Key) + ".json"
	if _, uploadErr := resilience.RetryFunc(ctx, pol, func(ctx context.Context) error {
		return r.deps.Store.UploadJSON(ctx, r.cfg.ResultsBucket, key, result)
	}); uploadErr != nil {
		// The run can still proceed to dispatch; the document is a
		// side artifact for reprocessing.
		r.log.WithFile(req.Key).Warn("Result document upload failed", map[string]interface{}{
			logger.FieldBucket: r.cfg.ResultsBucket,
			logger.FieldError:  uploadErr.Error(),
		})
	}
	return result, nil
}

// segmentAndChunk reconstructs sentence segments and assigns chunk
// identities. Provider segments, when present, replace local
// reconstruction entirely.
func (r *Runner) segmentAndChunk(ctx context.Context, exec *Execution, req RunRequest, result *transcript.Result) ([]chunk.Chunk, error) {
	ctx, span := r.stageSpan(ctx, StageSegmenting)
	defer span.End()

	start := time.Now()
	r.deps.Registry.recordAttempt(exec, StageSegmenting, 1)

	var segments []segment.Segment
	var err error
	if result.HasProviderSegments() {
		segments = segment.FromProvider(result.AudioSegments)
	} else {
		segments, err = r.deps.Extractor.Extract(result.Tokens)
	}
	if err != nil {
		r.deps.Metrics.RecordStage(ctx, StageSegmenting, 1, time.Since(start))
		return nil, r.failSpan(span, err)
	}

	chunks, err := chunk.Build(req.Key, segments, req.Metadata)
	r.deps.Metrics.RecordStage(ctx, StageSegmenting, 1, time.Since(start))
	if err != nil {
		return nil, r.failSpan(span, err)
	}
	span.SetAttributes(attribute.Int("pipeline.chunks", len(chunks)))
	r.deps.Registry.setChunks(exec, len(chunks), 0)
	return chunks, nil
}

// dispatch fans the chunks out sequentially, resuming from the first
// unconfirmed chunk on transient failures until the attempt budget is
// spent.
func (r *Runner) dispatch(ctx context.Context, exec *Execution, chunks []chunk.Chunk) error {
	ctx, span := r.stageSpan(ctx, StageDispatching)
	defer span.End()

	start := time.Now()
	pol := r.cfg.Dispatch.policy()

	published := 0
	attempts := 0
	var lastErr error
	for attempts < pol.MaxAttempts {
		attempts++
		r.deps.Registry.recordAttempt(exec, StageDispatching, attempts)

		attemptCtx, cancel := r.boundAttempt(ctx, r.cfg.Dispatch)
		n, err := r.deps.Dispatcher.Send(attemptCtx, chunks[published:])
		cancel()

		published += n
		r.deps.Registry.setChunks(exec, len(chunks), published)
		r.deps.Metrics.RecordChunksDispatched(ctx, n)

		if err == nil {
			r.deps.Metrics.RecordStage(ctx, StageDispatching, attempts, time.Since(start))
			span.SetAttributes(
				attribute.Int("stage.attempts", attempts),
				attribute.Int("pipeline.chunks_dispatched", published),
			)
			return nil
		}
		lastErr = err
		if !errors.IsRetryable(err) || attempts == pol.MaxAttempts {
			break
		}

		backoff := pol.Backoff(attempts)
		r.log.WithFile(exec.File).Warn("Dispatch attempt failed, resuming", map[string]interface{}{
			logger.FieldAttempt: attempts,
			logger.FieldCount:   published,
			logger.FieldError:   err.Error(),
			"backoff":           backoff.String(),
		})
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.deps.Metrics.RecordStage(ctx, StageDispatching, attempts, time.Since(start))
			return r.failSpan(span, ctx.Err())
		case <-timer.C:
		}
	}

	r.deps.Metrics.RecordStage(ctx, StageDispatching, attempts, time.Since(start))
	return r.failSpan(span, r.exhaust(errors.ClassDispatch, attempts, pol.MaxAttempts, lastErr))
}

// exhaust wraps a retryable error whose budget was spent; terminal
// errors pass through unchanged.
func (r *Runner) exhaust(class errors.Classification, attempts, budget int, err error) error {
	if errors.IsRetryable(err) && attempts >= budget {
		return errors.RetryExhausted(class, attempts, err)
	}
	return err
}

// stageSpan opens a child span named after the stage.
func (r *Runner) stageSpan(ctx context.Context, stage Stage) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "stage."+string(stage), trace.WithAttributes(
		attribute.String("pipeline.stage", string(stage)),
	))
}

// failSpan records the error on the span and passes it through.
func (r *Runner) failSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *Runner) finishFailed(ctx context.Context, exec *Execution, fallback errors.Classification, cause error) (Execution, error) {
	class := errors.Classify(cause, fallback)
	span := trace.SpanFromContext(ctx)
	span.RecordError(cause)
	span.SetStatus(codes.Error, string(class))
	r.deps.Registry.fail(exec, class, cause)
	r.deps.Metrics.RecordRunCompleted(ctx, StageFailed, string(class))
	r.log.WithFile(exec.File).Error("Pipeline run failed", map[string]interface{}{
		"classification":  string(class),
		logger.FieldError: cause.Error(),
	})
	snap, _ := r.deps.Registry.Get(exec.File)
	return snap, cause
}

func (r *Runner) onRetry(stage Stage, file string) func(int, error, time.Duration) {
	return func(attempt int, err error, backoff time.Duration) {
		r.log.WithFile(file).Warn("Stage attempt failed, retrying", map[string]interface{}{
			logger.FieldStage:   string(stage),
			logger.FieldAttempt: attempt,
			logger.FieldError:   err.Error(),
			"backoff":           backoff.String(),
		})
	}
}

// boundAttempt applies the stage's per-attempt timeout when configured.
func (r *Runner) boundAttempt(ctx context.Context, sc StageConfig) (context.Context, context.CancelFunc) {
	if t := sc.attemptTimeout(); t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}
