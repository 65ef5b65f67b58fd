// Package httpapi serves registered pipelines over an OpenAI-compatible HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mmichie/pipes/pkg/pipeline"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	List() []pipeline.Info
	Pipe(ctx context.Context, id string, req pipeline.Request) (string, error)
}

var logger = zerolog.Nop()

// SetLogger installs the structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { logger = l }

// NewMux builds the router for svc
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", listModels(svc))
		r.Post("/chat/completions", chatCompletions(svc))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func listModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos := svc.List()
		resp := modelList{Object: "list", Data: make([]model, 0, len(infos))}
		for _, info := range infos {
			resp.Data = append(resp.Data, model{
				ID:      info.ID,
				Object:  "model",
				Created: startedAt,
				OwnedBy: "pipes",
				Name:    info.Name,
				Ready:   info.Ready,
				Index:   info.Index,
			})
		}
		writeJSON(w, resp)
	}
}

func chatCompletions(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		var req chatRequest
		var body map[string]any
		if err := json.Unmarshal(raw, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Model == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}

		messages := make([]pipeline.Message, 0, len(req.Messages))
		for _, m := range req.Messages {
			messages = append(messages, pipeline.Message{Role: m.Role, Content: m.text()})
		}
		// The content itself is not validated; pipelines decide what to do with it.
		userMessage, ok := lastUserMessage(messages)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "a user message is required")
			return
		}

		log := logger.With().Str("pipeline", req.Model).Logger()
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			log = log.With().Str("request_id", rid).Logger()
		}
		log.Debug().Bool("stream", req.Stream).Int("messages", len(messages)).Msg("pipe start")

		start := time.Now()
		answer, err := svc.Pipe(r.Context(), req.Model, pipeline.Request{
			UserMessage: userMessage,
			ModelID:     req.Model,
			Messages:    messages,
			Body:        body,
		})
		observePipe(req.Model, err, time.Since(start))
		if err != nil {
			// Client went away; nobody is left to answer.
			if r.Context().Err() != nil {
				return
			}
			status := statusFor(err)
			log.Warn().Err(err).Int("status", status).Dur("dur", time.Since(start)).Msg("pipe failed")
			writeJSONError(w, status, err.Error())
			return
		}
		log.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).Msg("pipe end")

		stop := "stop"
		writeJSON(w, chatResponse{
			ID:      "chatcmpl-" + uuid.NewString(),
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   req.Model,
			Choices: []chatChoice{{
				Index:        0,
				Message:      pipeline.Message{Role: "assistant", Content: answer},
				FinishReason: &stop,
			}},
		})
	}
}

// lastUserMessage returns the content of the most recent user turn
func lastUserMessage(messages []pipeline.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content, true
		}
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("encoding response")
	}
}
