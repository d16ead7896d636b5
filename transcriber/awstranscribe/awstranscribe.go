// Package awstranscribe implements the recognizer provider on AWS
// Transcribe batch jobs: start a job for the source media, poll until it
// completes, then fetch and normalize the raw output from object storage.
package awstranscribe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/google/uuid"

	"github.com/skillsenselab/transcriptflow/errors"
	"github.com/skillsenselab/transcriptflow/logger"
	"github.com/skillsenselab/transcriptflow/store"
	"github.com/skillsenselab/transcriptflow/transcriber"
	"github.com/skillsenselab/transcriptflow/transcript"
)

// API is the subset of the AWS Transcribe client the provider uses.
type API interface {
	StartTranscriptionJob(ctx context.Context, in *transcribe.StartTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error)
	GetTranscriptionJob(ctx context.Context, in *transcribe.GetTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error)
}

// Provider implements transcriber.Provider using AWS Transcribe.
type Provider struct {
	api   API
	store store.Store
	cfg   Config
	log   *logger.Logger
}

// New creates a Provider with a real AWS Transcribe client.
func New(ctx context.Context, cfg Config, st store.Store, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("transcriber: load aws config: %w", err)
	}

	return NewWithAPI(transcribe.NewFromConfig(awsCfg), cfg, st, log), nil
}

// NewWithAPI creates a Provider with an explicit API implementation.
func NewWithAPI(api API, cfg Config, st store.Store, log *logger.Logger) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		api:   api,
		store: st,
		cfg:   cfg,
		log:   log.WithComponent("transcriber.aws"),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Transcribe starts a recognition job for the source media, waits for it
// to complete, and returns the normalized result.
func (p *Provider) Transcribe(ctx context.Context, req transcriber.Request) (*transcript.Result, error) {
	jobName := "transcribe-" + uuid.NewString()
	format, mediaType, known := transcriber.DetectMedia(req.Key)
	if !known {
		p.log.Warn("unsupported file extension, defaulting to audio", logger.Fields(
			logger.FieldFile, req.Key,
		))
	}

	rawKey := fmt.Sprintf("raw_transcriptions/%s.json", jobName)
	fileURI := fmt.Sprintf("s3://%s/%s", req.Bucket, req.Key)

	p.log.Info("starting transcription job", logger.Fields(
		logger.FieldFile, req.Key,
		logger.FieldJobName, jobName,
		"media_type", mediaType,
		"media_format", format,
	))

	_, err := p.api.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
		Media:                &types.Media{MediaFileUri: aws.String(fileURI)},
		MediaFormat:          types.MediaFormat(format),
		LanguageCode:         types.LanguageCode(p.cfg.LanguageCode),
		OutputBucketName:     aws.String(p.cfg.OutputBucket),
		OutputKey:            aws.String(rawKey),
	})
	if err != nil {
		return nil, classifyServiceError(err)
	}

	if err := p.waitForJob(ctx, jobName); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := p.store.DownloadJSON(ctx, p.cfg.OutputBucket, rawKey, &raw); err != nil {
		return nil, errors.ServiceUnavailable(errors.ClassTranscription, "transcript storage").WithCause(err)
	}

	res, err := transcript.ParseRaw(raw)
	if err != nil {
		return nil, errors.Internal(errors.ClassTranscription, "unreadable recognizer output").WithCause(err)
	}

	res.OriginalFile = req.Key
	res.JobName = jobName
	res.MediaType = mediaType
	res.Timestamp = time.Now().UTC().Format(time.RFC3339)

	p.log.Info("transcription job complete", logger.Fields(
		logger.FieldJobName, jobName,
		"tokens", len(res.Tokens),
		"audio_segments", len(res.AudioSegments),
	))
	return res, nil
}

// waitForJob polls the job status with bounded attempts.
func (p *Provider) waitForJob(ctx context.Context, jobName string) error {
	for attempt := 1; attempt <= p.cfg.MaxPollAttempts; attempt++ {
		out, err := p.api.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
			TranscriptionJobName: aws.String(jobName),
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn("job status check failed", logger.ErrorFields("get_transcription_job", err))
		} else {
			status := out.TranscriptionJob.TranscriptionJobStatus
			p.log.Debug("job status", logger.Fields(
				logger.FieldJobName, jobName,
				"status", string(status),
				logger.FieldAttempt, attempt,
			))

			switch status {
			case types.TranscriptionJobStatusCompleted:
				return nil
			case types.TranscriptionJobStatusFailed:
				reason := "unknown error"
				if out.TranscriptionJob.FailureReason != nil {
					reason = *out.TranscriptionJob.FailureReason
				}
				return errors.TranscriptionFailed(reason)
			}
		}

		if attempt == p.cfg.MaxPollAttempts {
			break
		}
		timer := time.NewTimer(p.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return errors.Timeout(errors.ClassTranscription, "transcription job").
		WithDetail("job_name", jobName).
		WithDetail("poll_attempts", p.cfg.MaxPollAttempts)
}

// classifyServiceError maps AWS Transcribe failures onto the pipeline
// taxonomy so the orchestrator retries only what can succeed on retry.
func classifyServiceError(err error) error {
	var limit *types.LimitExceededException
	if stderrors.As(err, &limit) {
		return errors.Throttled(errors.ClassTranscription, "recognizer").WithCause(err)
	}
	var bad *types.BadRequestException
	if stderrors.As(err, &bad) {
		return errors.Internal(errors.ClassTranscription, "recognizer rejected the request").WithCause(err)
	}
	var conflict *types.ConflictException
	if stderrors.As(err, &conflict) {
		return errors.Internal(errors.ClassTranscription, "transcription job name conflict").WithCause(err)
	}
	return errors.ServiceUnavailable(errors.ClassTranscription, "recognizer").WithCause(err)
}
