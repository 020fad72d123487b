package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/caloriediary/internal/apperr"
	"github.com/nikhilbhutani/caloriediary/internal/multimodal/stt"
	"github.com/nikhilbhutani/caloriediary/internal/nutrition"
)

// recorder captures the order in which stages run.
type recorder struct {
	calls []string
}

type stubTranscriber struct {
	rec  *recorder
	text string
	err  error
	got  stt.TranscriptionRequest
	wait bool
}

func (s *stubTranscriber) Name() string { return "stub" }

func (s *stubTranscriber) Transcribe(ctx context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	s.rec.calls = append(s.rec.calls, "transcribe")
	s.got = req
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &stt.TranscriptionResponse{Text: s.text}, nil
}

type stubAnalyzer struct {
	rec    *recorder
	result *nutrition.Result
	err    error
	got    string
	hasDL  bool
}

func (s *stubAnalyzer) Analyze(ctx context.Context, transcript string) (*nutrition.Result, error) {
	s.rec.calls = append(s.rec.calls, "analyze")
	s.got = transcript
	_, s.hasDL = ctx.Deadline()
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func sampleResult() *nutrition.Result {
	return &nutrition.Result{
		Foods:         []nutrition.FoodItem{{Food: "egg", Grams: 50, Calories: 72, Protein: 6.3, Fat: 4.8, Carbs: 0.4}},
		TotalCalories: 72,
		TotalProtein:  6.3,
		TotalFat:      4.8,
		TotalCarbs:    0.4,
	}
}

func TestProcessAudioOrder(t *testing.T) {
	rec := &recorder{}
	tr := &stubTranscriber{rec: rec, text: "one egg"}
	an := &stubAnalyzer{rec: rec, result: sampleResult()}
	p := New(tr, an, time.Minute)

	entry, err := p.ProcessAudio(context.Background(), []byte("audio"), "audio/webm")
	require.NoError(t, err)

	assert.Equal(t, []string{"transcribe", "analyze"}, rec.calls)
	assert.Equal(t, []byte("audio"), tr.got.Audio)
	assert.Equal(t, "audio/webm", tr.got.MimeType)
	assert.Equal(t, "one egg", an.got)
	assert.True(t, an.hasDL)
	assert.Equal(t, "one egg", entry.Transcript)
	assert.Equal(t, *sampleResult(), entry.Result)
}

func TestProcessAudioTranscriptionFailureSkipsAnalysis(t *testing.T) {
	rec := &recorder{}
	tr := &stubTranscriber{rec: rec, err: apperr.Upstream("transcribe", 500, "transcription failed", nil)}
	an := &stubAnalyzer{rec: rec, result: sampleResult()}

	_, err := New(tr, an, time.Minute).ProcessAudio(context.Background(), []byte("audio"), "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, []string{"transcribe"}, rec.calls)
}

func TestProcessAudioEmptyTranscript(t *testing.T) {
	rec := &recorder{}
	tr := &stubTranscriber{rec: rec, text: "  "}
	an := &stubAnalyzer{rec: rec, result: sampleResult()}

	_, err := New(tr, an, time.Minute).ProcessAudio(context.Background(), []byte("audio"), "")
	assert.Equal(t, apperr.KindParse, apperr.KindOf(err))
	assert.Equal(t, []string{"transcribe"}, rec.calls)
}

func TestProcessAudioTimeout(t *testing.T) {
	rec := &recorder{}
	tr := &stubTranscriber{rec: rec, wait: true}
	an := &stubAnalyzer{rec: rec, result: sampleResult()}

	start := time.Now()
	_, err := New(tr, an, 20*time.Millisecond).ProcessAudio(context.Background(), []byte("audio"), "")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"transcribe"}, rec.calls)
}

func TestProcessAudioCallerCancel(t *testing.T) {
	rec := &recorder{}
	tr := &stubTranscriber{rec: rec, wait: true}
	an := &stubAnalyzer{rec: rec}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(tr, an, 0).ProcessAudio(ctx, []byte("audio"), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"transcribe"}, rec.calls)
}

func TestProcessText(t *testing.T) {
	rec := &recorder{}
	tr := &stubTranscriber{rec: rec}
	an := &stubAnalyzer{rec: rec, result: sampleResult()}

	entry, err := New(tr, an, time.Minute).ProcessText(context.Background(), "one egg")
	require.NoError(t, err)
	assert.Equal(t, []string{"analyze"}, rec.calls)
	assert.Equal(t, "one egg", entry.Transcript)
	assert.Equal(t, 72.0, entry.TotalCalories)
}

func TestProcessTextAnalysisError(t *testing.T) {
	rec := &recorder{}
	cause := apperr.Parse("analyze", "model reply is not valid JSON", errors.New("invalid character"))
	an := &stubAnalyzer{rec: rec, err: cause}

	_, err := New(&stubTranscriber{rec: rec}, an, time.Minute).ProcessText(context.Background(), "rice")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperr.KindParse, apperr.KindOf(err))
}
