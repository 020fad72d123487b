package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/caloriediary/internal/api/middleware"
	"github.com/nikhilbhutani/caloriediary/internal/apperr"
	"github.com/nikhilbhutani/caloriediary/internal/pipeline"
)

// Processor runs diary entries through the transcription/analysis pipeline.
type Processor interface {
	ProcessText(ctx context.Context, text string) (*pipeline.Entry, error)
	ProcessAudio(ctx context.Context, audio []byte, mimeType string) (*pipeline.Entry, error)
}

type ProcessHandler struct {
	processor Processor
	maxBody   int64
}

func NewProcessHandler(p Processor, maxBody int64) *ProcessHandler {
	return &ProcessHandler{processor: p, maxBody: maxBody}
}

type processTextRequest struct {
	Text string `json:"text"`
}

type processAudioRequest struct {
	Audio    string `json:"audio"`
	MimeType string `json:"mimeType"`
}

// ProcessText analyzes a typed diary entry.
func (h *ProcessHandler) ProcessText(w http.ResponseWriter, r *http.Request) {
	const route = "process-text"

	var req processTextRequest
	if err := h.decode(w, r, route, &req); err != nil {
		h.fail(w, r, route, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.fail(w, r, route, apperr.Request(route, "text is required", nil))
		return
	}

	entry, err := h.processor.ProcessText(r.Context(), req.Text)
	if err != nil {
		h.fail(w, r, route, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ProcessAudio transcribes a base64 recording, then analyzes the transcript.
func (h *ProcessHandler) ProcessAudio(w http.ResponseWriter, r *http.Request) {
	const route = "process-audio"

	var req processAudioRequest
	if err := h.decode(w, r, route, &req); err != nil {
		h.fail(w, r, route, err)
		return
	}

	audio, mimeType, err := decodeAudio(req.Audio, req.MimeType)
	if err != nil {
		h.fail(w, r, route, apperr.Request(route, "audio is not valid base64", err))
		return
	}
	if len(audio) == 0 {
		h.fail(w, r, route, apperr.Request(route, "audio is required", nil))
		return
	}

	entry, err := h.processor.ProcessAudio(r.Context(), audio, mimeType)
	if err != nil {
		h.fail(w, r, route, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *ProcessHandler) decode(w http.ResponseWriter, r *http.Request, route string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Request(route, "request body too large", err)
		}
		return apperr.Request(route, "read request body", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Request(route, "invalid request body", err)
	}
	return nil
}

// errorResponse maps a failure to its status and public message. Only
// malformed requests are distinguished; everything else is reported as a
// generic processing failure.
func errorResponse(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindRequest:
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Processing failed"
	}
}

func (h *ProcessHandler) fail(w http.ResponseWriter, r *http.Request, route string, err error) {
	status, msg := errorResponse(err)
	slog.ErrorContext(r.Context(), "processing failed",
		"route", route,
		"kind", apperr.KindOf(err).String(),
		"status", status,
		"error", err,
		"request_id", middleware.RequestIDFromContext(r.Context()),
	)
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeAudio accepts plain base64 or a data: URL. A data URL's media type
// is used when mimeType is empty.
func decodeAudio(payload, mimeType string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", errors.New("unsupported data URL")
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(meta, ";base64")
		}
		payload = data
	}

	audio, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(payload); rawErr == nil {
			return raw, mimeType, nil
		}
		return nil, "", err
	}
	return audio, mimeType, nil
}
