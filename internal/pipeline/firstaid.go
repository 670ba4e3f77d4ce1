package pipeline

import (
	"context"
	"strings"

	"sosconnect-go/internal/extractor"
	"sosconnect-go/internal/logger"
	"sosconnect-go/internal/progress"
	"sosconnect-go/internal/types"
)

const maxFirstAidSteps = 5

// Inference is the single-shot call surface the pipelines drive. The
// concrete implementation lives in internal/gateway.
type Inference interface {
	TranscribeAndTranslate(ctx context.Context, media types.MediaAsset, targetLanguage string) (string, error)
	ExtractStructured(ctx context.Context, media *types.MediaAsset, schema, contextPrompt string) (string, error)
	DetectLanguage(ctx context.Context, media types.MediaAsset) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type stepPair struct {
	Instruction string `json:"instruction"`
	ImagePrompt string `json:"image_prompt"`
}

// FirstAid turns a report into illustrated instruction steps: detect the
// spoken language, generate instruction/image-prompt pairs in one call, then
// fan out one image generation per pair.
type FirstAid struct {
	AI   Inference
	Sink progress.Sink
	Log  *logger.Logger
}

func NewFirstAid(ai Inference, sink progress.Sink) *FirstAid {
	if sink == nil {
		sink = progress.Discard
	}
	return &FirstAid{AI: ai, Sink: sink, Log: logger.New()}
}

// Run produces the ordered step sequence. Image failures degrade per step to
// an empty image; every other failure aborts the pipeline.
func (p *FirstAid) Run(ctx context.Context, report types.SosReport, media types.MediaAsset) ([]types.FirstAidStep, error) {
	if media.Empty() {
		return nil, &types.MissingInputError{What: "media asset for first aid"}
	}
	log := p.Log.WithField("component", "first_aid")

	language, err := p.AI.DetectLanguage(ctx, media)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(language) == "" {
		language = "English"
	}
	log = log.WithField("language", language)

	raw, err := p.AI.GenerateText(ctx, firstAidPrompt(report, language))
	if err != nil {
		return nil, err
	}
	var pairs []stepPair
	if err := extractor.Decode(raw, &pairs); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, &types.MalformedOutputError{Msg: "no first-aid steps in model output"}
	}
	if len(pairs) > maxFirstAidSteps {
		pairs = pairs[:maxFirstAidSteps]
	}

	images, errs := EachOf(ctx, len(pairs), func(ctx context.Context, i int) (string, error) {
		return p.AI.GenerateImage(ctx, pairs[i].ImagePrompt)
	})
	for i, err := range errs {
		if err != nil {
			// Partial degradation: this step ships without an image.
			log.WithError(err).WithField("step", i).Warn("image generation failed")
			images[i] = ""
		}
	}

	steps := make([]types.FirstAidStep, len(pairs))
	for i, pair := range pairs {
		steps[i] = types.FirstAidStep{Instruction: pair.Instruction, Image: images[i]}
	}
	return steps, nil
}
