package pipeline

import (
	"context"
	"fmt"

	"sosconnect-go/internal/extractor"
	"sosconnect-go/internal/logger"
	"sosconnect-go/internal/progress"
	"sosconnect-go/internal/types"
)

// Report is the emergency flow: translation and structured extraction run in
// parallel with all-or-nothing fan-in, then first aid runs sequentially
// unless the caller picked quick send.
type Report struct {
	AI       Inference
	FirstAid *FirstAid
	Sink     progress.Sink
	Log      *logger.Logger
}

func NewReport(ai Inference, firstAid *FirstAid, sink progress.Sink) *Report {
	if sink == nil {
		sink = progress.Discard
	}
	return &Report{AI: ai, FirstAid: firstAid, Sink: sink, Log: logger.New()}
}

// Run assembles a GeneratedContent for the captured clip. quickSend skips
// first-aid generation entirely so the pair can go straight to the send
// step.
func (p *Report) Run(ctx context.Context, media types.MediaAsset, loc types.LocationInfo, quickSend bool) (*types.GeneratedContent, error) {
	if media.Empty() {
		return nil, &types.MissingInputError{What: "media asset"}
	}
	if loc.LocalLanguage == "" {
		return nil, &types.MissingInputError{What: "location with local language"}
	}

	log := p.Log.WithField("component", "report")
	p.Sink.Publish("Generating SOS report and translation...")

	var (
		translation string
		report      types.SosReport
	)
	err := AllOf(ctx,
		func(ctx context.Context) error {
			out, err := p.AI.TranscribeAndTranslate(ctx, media, loc.LocalLanguage)
			if err != nil {
				return err
			}
			translation = out
			return nil
		},
		func(ctx context.Context) error {
			raw, err := p.AI.ExtractStructured(ctx, &media, sosReportSchema(loc), sosReportPrompt(loc))
			if err != nil {
				return err
			}
			if err := extractor.Decode(raw, &report); err != nil {
				return err
			}
			return normalizeReport(&report, loc)
		},
	)
	if err != nil {
		// All-or-nothing: no partial report survives a failed half.
		return nil, err
	}

	content := &types.GeneratedContent{
		SosReport:       &report,
		FullTranslation: translation,
		FirstAidSteps:   []types.FirstAidStep{},
	}
	if quickSend {
		log.WithField("danger_type", report.DangerType).Info("report ready for quick send")
		return content, nil
	}

	p.Sink.Publish("Generating contextual images and first aid instructions...")
	steps, err := p.FirstAid.Run(ctx, report, media)
	if err != nil {
		return nil, err
	}
	content.FirstAidSteps = steps
	log.WithField("steps", len(steps)).Info("report assembled")
	return content, nil
}

// normalizeReport enforces the report's shape contract after the structural
// parse: context and danger type must be present, the location falls back to
// the resolved city/country, and needs are never nil.
func normalizeReport(report *types.SosReport, loc types.LocationInfo) error {
	if report.Context == "" || report.DangerType == "" {
		return &types.MalformedOutputError{Msg: "sos report missing context or danger_type"}
	}
	if report.LocationDetails == "" {
		report.LocationDetails = fmt.Sprintf("%s, %s", loc.City, loc.Country)
	}
	if report.UserNeeds == nil {
		report.UserNeeds = []string{}
	}
	return nil
}
