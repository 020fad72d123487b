package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/caloriediary/internal/api/handlers"
	"github.com/nikhilbhutani/caloriediary/internal/api/middleware"
	"github.com/nikhilbhutani/caloriediary/internal/config"
	"github.com/nikhilbhutani/caloriediary/internal/llm"
	"github.com/nikhilbhutani/caloriediary/internal/multimodal/stt"
	"github.com/nikhilbhutani/caloriediary/internal/nutrition"
	"github.com/nikhilbhutani/caloriediary/internal/pipeline"
	"github.com/nikhilbhutani/caloriediary/internal/static"
)

type Router struct {
	mux      *chi.Mux
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	assets   *static.Responder
}

func NewRouter(cfg *config.Config) (*Router, error) {
	p, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return &Router{
		mux:      chi.NewRouter(),
		cfg:      cfg,
		pipeline: p,
		assets:   static.New(os.DirFS(cfg.Static.Dir)),
	}, nil
}

// NewPipeline wires the configured transcription and analysis backends.
func NewPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	var transcriber stt.STTProvider
	switch cfg.STT.Backend {
	case "", "openai":
		transcriber = stt.NewOpenAISTT(stt.OpenAISTTConfig{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.STT.OpenAIBaseURL,
			Model:      cfg.STT.Model,
			RequireKey: true,
		})
	case "local":
		transcriber = stt.NewLocalSTT(stt.LocalSTTConfig{
			BaseURL: cfg.STT.LocalBaseURL,
			Model:   cfg.STT.Model,
		})
	default:
		return nil, fmt.Errorf("stt backend %q not supported", cfg.STT.Backend)
	}

	provider, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	analyzer := nutrition.NewAnalyzer(provider, nutrition.Options{
		Model:     cfg.Nutrition.Model,
		MaxTokens: cfg.Nutrition.MaxTokens,
		Validate:  cfg.Nutrition.Validate,
	})

	return pipeline.New(transcriber, analyzer, cfg.Limits.UpstreamTimeout), nil
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	health := handlers.NewHealthHandler()
	r.Get("/healthz", health.Healthz)

	processH := handlers.NewProcessHandler(rt.pipeline, rt.cfg.Limits.MaxBodyBytes)
	r.Post("/process-text", processH.ProcessText)
	r.Post("/process-audio", processH.ProcessAudio)

	// Everything else is a static asset lookup.
	r.NotFound(rt.assets.ServeHTTP)
	r.MethodNotAllowed(rt.assets.ServeHTTP)

	return r
}
