package stt

import (
	"context"
	"mime"
	"strings"
)

// DefaultMimeType is assumed when the caller does not declare one.
const DefaultMimeType = "audio/webm"

// TranscriptionRequest holds the audio to transcribe.
type TranscriptionRequest struct {
	Audio    []byte `json:"-"`
	MimeType string `json:"mime_type,omitempty"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// STTProvider is the interface for speech-to-text backends.
type STTProvider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

var extensions = map[string]string{
	"audio/webm":   ".webm",
	"video/webm":   ".webm",
	"audio/ogg":    ".ogg",
	"audio/mp4":    ".m4a",
	"audio/x-m4a":  ".m4a",
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/wave":   ".wav",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
}

// fileName picks an upload filename whose extension matches the declared
// type; the transcription API sniffs the container from it.
func fileName(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}
	if ext, ok := extensions[mediaType]; ok {
		return "audio" + ext
	}
	return "audio.webm"
}
