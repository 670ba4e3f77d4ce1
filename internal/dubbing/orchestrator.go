package dubbing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"sosconnect-go/internal/logger"
	"sosconnect-go/internal/progress"
	"sosconnect-go/internal/types"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 120
)

var errStillRunning = errors.New("dubbing still in progress")

// Orchestrator owns a dubbing job for its whole lifetime: submit, poll on a
// fixed schedule until a terminal status, fetch the audio, discard the job.
type Orchestrator struct {
	client       *Client
	pollInterval time.Duration
	maxPolls     int
	sink         progress.Sink
	log          *logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPollInterval overrides the fixed delay between status checks.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.pollInterval = d }
}

// WithMaxPolls caps how many status checks may observe an in-progress state
// before the run fails with a timeout. The original web client polled
// forever; that gap is closed here.
func WithMaxPolls(n int) Option {
	return func(o *Orchestrator) { o.maxPolls = n }
}

// WithProgress directs phase labels to sink.
func WithProgress(sink progress.Sink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

func NewOrchestrator(client *Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:       client,
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
		sink:         progress.Discard,
		log:          logger.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run drives the full job lifecycle and returns the rendered audio bytes.
func (o *Orchestrator) Run(ctx context.Context, media types.MediaAsset, targetLang string) ([]byte, error) {
	if media.Empty() {
		return nil, &types.MissingInputError{What: "media asset for dubbing"}
	}

	log := o.log.WithField("component", "dubbing")

	o.sink.Publish("Uploading clip for automatic dubbing...")
	jobID, err := o.client.Submit(ctx, media, targetLang)
	if err != nil {
		return nil, err
	}
	log = log.WithField("dubbing_id", jobID)
	log.Info("dubbing job submitted")

	o.sink.Publish("Polling for dubbing completion...")
	if err := o.awaitDubbed(ctx, jobID); err != nil {
		return nil, err
	}

	o.sink.Publish("Downloading final dubbed audio...")
	audio, err := o.client.FetchAudio(ctx, jobID, targetLang)
	if err != nil {
		log.WithError(err).Warn("dubbed audio download failed")
		return nil, err
	}
	log.WithField("audio_bytes", len(audio)).Info("dubbing complete")
	return audio, nil
}

// awaitDubbed polls on a constant schedule until the job leaves the
// in-progress set. Success is "dubbed"; any other departure is terminal
// failure; exhausting the attempt ceiling is a timeout.
func (o *Orchestrator) awaitDubbed(ctx context.Context, jobID string) error {
	log := o.log.WithField("dubbing_id", jobID)
	attempts := 0

	check := func() error {
		attempts++
		status, reason, err := o.client.JobStatus(ctx, jobID)
		if err != nil {
			return backoff.Permanent(err)
		}
		log.WithField("status", string(status)).Debug("dubbing status")

		switch {
		case status == StatusDubbed:
			return nil
		case inProgress[status]:
			o.sink.Publish("Dubbing status: " + phaseLabel(status) + "...")
			return errStillRunning
		default:
			return backoff.Permanent(&types.JobFailedError{Status: string(status), Reason: reason})
		}
	}

	schedule := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(o.pollInterval), uint64(o.maxPolls-1)),
		ctx,
	)
	err := backoff.Retry(check, schedule)
	if errors.Is(err, errStillRunning) {
		return &types.TimeoutError{Attempts: attempts}
	}
	return err
}

// phaseLabel turns a wire status into the human-readable label shown to the
// user, e.g. "transcribing" -> "Transcribing".
func phaseLabel(status Status) string {
	s := string(status)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
