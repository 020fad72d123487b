// Package pipeline runs a diary entry through transcription and nutrition
// analysis under one deadline.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nikhilbhutani/caloriediary/internal/apperr"
	"github.com/nikhilbhutani/caloriediary/internal/multimodal/stt"
	"github.com/nikhilbhutani/caloriediary/internal/nutrition"
)

// Analyzer produces a nutrition breakdown from a transcript.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (*nutrition.Result, error)
}

// Entry is the response body for a processed diary entry.
type Entry struct {
	Transcript string `json:"transcript"`
	nutrition.Result
}

type Pipeline struct {
	transcriber stt.STTProvider
	analyzer    Analyzer
	timeout     time.Duration
}

// New returns a pipeline. A zero timeout leaves deadlines to the caller.
func New(transcriber stt.STTProvider, analyzer Analyzer, timeout time.Duration) *Pipeline {
	return &Pipeline{transcriber: transcriber, analyzer: analyzer, timeout: timeout}
}

// ProcessText analyzes text that is already a transcript.
func (p *Pipeline) ProcessText(ctx context.Context, text string) (*Entry, error) {
	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	return p.analyze(ctx, text)
}

// ProcessAudio transcribes audio, then analyzes the transcript. Analysis is
// never started if transcription fails.
func (p *Pipeline) ProcessAudio(ctx context.Context, audio []byte, mimeType string) (*Entry, error) {
	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	tr, err := p.transcriber.Transcribe(ctx, stt.TranscriptionRequest{Audio: audio, MimeType: mimeType})
	if err != nil {
		return nil, stageError("transcribe", err)
	}
	if strings.TrimSpace(tr.Text) == "" {
		return nil, apperr.Parse("transcribe", "transcript is empty", nil)
	}

	return p.analyze(ctx, tr.Text)
}

func (p *Pipeline) analyze(ctx context.Context, transcript string) (*Entry, error) {
	result, err := p.analyzer.Analyze(ctx, transcript)
	if err != nil {
		return nil, stageError("analyze", err)
	}
	return &Entry{Transcript: transcript, Result: *result}, nil
}

func (p *Pipeline) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// stageError tags cancellations that escaped a stage untyped.
func stageError(stage string, err error) error {
	if apperr.KindOf(err) == apperr.KindUnknown &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		return apperr.Upstream(stage, 0, "aborted", err)
	}
	return err
}
