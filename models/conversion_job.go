package models

import "time"

// Job is the per-invocation conversion setup. It is built once from the
// configuration and shared read-only by every image in the batch.
type Job struct {
	InPath          string   `json:"inPath"`
	OutPath         string   `json:"outPath"`
	TmpPath         string   `json:"tmpPath"`
	ChunkSize       int      `json:"chunkSize"`
	KeyPathname     string   `json:"keyPathname,omitempty"`
	CreationOptions []string `json:"creationOptions"`
}

// Stage is the last step an image reached.
type Stage string

const (
	StageOpen      Stage = "open"
	StageTimestamp Stage = "timestamp"
	StageTranslate Stage = "translate"
	StageRelocate  Stage = "relocate"
	StageCleanup   Stage = "cleanup"
	StageDone      Stage = "done"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome is the result of driving one image through the pipeline.
type Outcome struct {
	Source      string    `json:"source"`
	Timestamp   string    `json:"timestamp,omitempty"`
	Stage       Stage     `json:"stage"`
	Status      Status    `json:"status"`
	Artifact    string    `json:"artifact,omitempty"`
	Destination string    `json:"destination,omitempty"`
	URL         string    `json:"url,omitempty"`
	Err         error     `json:"-"`
	CleanupErr  error     `json:"-"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

func (o *Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// ErrorMessage returns the stage error text, or "" when there is none.
func (o *Outcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Summary counts outcomes of a batch run.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

func (s *Summary) Add(o *Outcome) {
	s.Total++
	switch o.Status {
	case StatusCompleted:
		s.Completed++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}
