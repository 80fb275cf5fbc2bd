package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"cogconverter/models"
	"cogconverter/services"

	"github.com/rs/zerolog"
)

type Converter interface {
	Convert(ctx context.Context, source string) (string, error)
}

type Relocator interface {
	Relocate(ctx context.Context, artifact, timestamp string) (string, error)
}

// Recorder receives every outcome after cleanup. Failures are logged only.
type Recorder interface {
	RecordOutcome(ctx context.Context, o *models.Outcome) error
}

// Runner drives the images of a batch one at a time through
// convert, relocate and cleanup.
type Runner struct {
	job       *models.Job
	converter Converter
	relocator Relocator
	dest      string
	recorders []Recorder
	log       zerolog.Logger
	now       func() time.Time
}

func NewRunner(job *models.Job, conv Converter, reloc Relocator, dest string, log zerolog.Logger, recorders ...Recorder) *Runner {
	return &Runner{
		job:       job,
		converter: conv,
		relocator: reloc,
		dest:      dest,
		recorders: recorders,
		log:       log,
		now:       time.Now,
	}
}

// Run processes images in order and returns the tally. A failing image
// never stops the batch; a cancelled context stops it before the next one.
func (r *Runner) Run(ctx context.Context, images []string) models.Summary {
	var summary models.Summary

	r.log.Info().
		Int("images", len(images)).
		Str("destination", r.dest).
		Str("tmp_path", r.job.TmpPath).
		Strs("creation_options", r.job.CreationOptions).
		Msg("Starting batch")

	for i, image := range images {
		if err := ctx.Err(); err != nil {
			r.log.Warn().Int("remaining", len(images)-i).Msg("Batch interrupted")
			break
		}

		outcome := r.processImage(ctx, image)
		summary.Add(outcome)
		r.record(ctx, outcome)
	}

	r.log.Info().
		Int("total", summary.Total).
		Int("completed", summary.Completed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Batch finished")

	return summary
}

func (r *Runner) processImage(ctx context.Context, source string) *models.Outcome {
	o := &models.Outcome{
		Source:      source,
		Timestamp:   services.ExtractTimestamp(source),
		Destination: r.dest,
		StartedAt:   r.now(),
	}
	log := r.log.With().Str("source", source).Logger()
	log.Debug().Msg("Processing image")

	artifact, err := r.converter.Convert(ctx, source)
	if err != nil {
		return r.handleFailure(log, o, stageOf(err), err)
	}
	o.Artifact = artifact
	log.Debug().Str("artifact", artifact).Msg("Converted to COG")

	location, relocErr := r.relocator.Relocate(ctx, artifact, o.Timestamp)

	// The temp directory goes whether or not relocation worked
	tmpDir := filepath.Dir(artifact)
	if err := os.RemoveAll(tmpDir); err != nil {
		o.CleanupErr = err
		log.Warn().Err(err).Str("dir", tmpDir).Msg("Failed to remove temp directory")
	}

	if relocErr != nil {
		return r.handleFailure(log, o, models.StageRelocate, relocErr)
	}

	o.Destination = location
	if services.IsURI(location) {
		o.URL = location
	}
	o.Stage = models.StageDone
	if o.CleanupErr != nil {
		o.Stage = models.StageCleanup
	}
	o.Status = models.StatusCompleted
	o.FinishedAt = r.now()

	log.Info().
		Str("timestamp", o.Timestamp).
		Str("location", location).
		Int64("duration_ms", o.Duration().Milliseconds()).
		Msg("Conversion completed")
	return o
}

func (r *Runner) handleFailure(log zerolog.Logger, o *models.Outcome, stage models.Stage, err error) *models.Outcome {
	o.Stage = stage
	o.Err = err
	o.FinishedAt = r.now()

	if errors.Is(err, services.ErrNoTimestamp) {
		o.Status = models.StatusSkipped
		log.Info().Msg("No date-time token in pathname, skipping")
		return o
	}

	o.Status = models.StatusFailed
	log.Error().Err(err).Str("stage", string(stage)).Msg("Conversion failed")
	return o
}

func (r *Runner) record(ctx context.Context, o *models.Outcome) {
	for _, rec := range r.recorders {
		// a cancelled batch still records the image it was on
		if err := rec.RecordOutcome(context.WithoutCancel(ctx), o); err != nil {
			r.log.Warn().Err(err).Str("source", o.Source).Msg("Failed to record outcome")
		}
	}
}

func stageOf(err error) models.Stage {
	switch {
	case errors.Is(err, services.ErrUnreadable):
		return models.StageOpen
	case errors.Is(err, services.ErrNoTimestamp):
		return models.StageTimestamp
	default:
		return models.StageTranslate
	}
}
