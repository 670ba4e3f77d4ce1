package pipeline

import (
	"context"

	"sosconnect-go/internal/extractor"
	"sosconnect-go/internal/logger"
	"sosconnect-go/internal/progress"
	"sosconnect-go/internal/types"
)

// Dubber runs the full dubbing job lifecycle. The concrete implementation is
// the dubbing orchestrator.
type Dubber interface {
	Run(ctx context.Context, media types.MediaAsset, targetLang string) ([]byte, error)
}

// News is the news flow: video analysis and the dubbing job run in parallel
// with all-or-nothing fan-in; the dub target is always English.
type News struct {
	AI     Inference
	Dubber Dubber
	Sink   progress.Sink
	Log    *logger.Logger
}

func NewNews(ai Inference, dubber Dubber, sink progress.Sink) *News {
	if sink == nil {
		sink = progress.Discard
	}
	return &News{AI: ai, Dubber: dubber, Sink: sink, Log: logger.New()}
}

type newsAnalysis struct {
	Summary  string               `json:"summary"`
	Segments []types.TimedSegment `json:"segments"`
}

// Run assembles the subtitled, English-dubbed rendition of the clip.
// Segments come back normalized: time-ordered, non-overlapping, half-open
// [start, end) intervals — downstream subtitle selection relies on that.
func (p *News) Run(ctx context.Context, media types.MediaAsset) (*types.NewsContent, error) {
	if media.Empty() {
		return nil, &types.MissingInputError{What: "news video"}
	}

	log := p.Log.WithField("component", "news")
	p.Sink.Publish("Starting video processing...")

	var (
		analysis newsAnalysis
		audio    []byte
	)
	err := AllOf(ctx,
		func(ctx context.Context) error {
			raw, err := p.AI.ExtractStructured(ctx, &media, newsAnalysisSchema, newsAnalysisPrompt)
			if err != nil {
				return err
			}
			if err := extractor.Decode(raw, &analysis); err != nil {
				return err
			}
			if analysis.Summary == "" {
				return &types.MalformedOutputError{Msg: "news analysis missing summary"}
			}
			analysis.Segments = types.NormalizeSegments(analysis.Segments)
			return nil
		},
		func(ctx context.Context) error {
			out, err := p.Dubber.Run(ctx, media, "en")
			if err != nil {
				return err
			}
			audio = out
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	log.WithField("segments", len(analysis.Segments)).Info("news content assembled")
	return &types.NewsContent{
		Summary:     analysis.Summary,
		Segments:    analysis.Segments,
		DubbedAudio: audio,
	}, nil
}
