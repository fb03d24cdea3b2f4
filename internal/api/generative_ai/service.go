package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

var ErrClientNotInitialized = errors.New("genai client is not initialized")

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

type AIClient struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

func NewAIClient(ctx context.Context, cfg Config, logger *slog.Logger) (*AIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

func (ai *AIClient) contentConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{Temperature: genai.Ptr(ai.temperature)}
}

// GenerateContent returns the whole response text for prompt.
func (ai *AIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	if ai.client == nil {
		span.RecordError(ErrClientNotInitialized)
		span.SetStatus(codes.Error, "client not initialized")
		return "", ErrClientNotInitialized
	}
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), ai.contentConfig())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	span.SetStatus(codes.Ok, "content generated")
	return result.Text(), nil
}

// GenerateItineraryStream yields the response text chunk by chunk. A failure
// is yielded once as the error of the final pair.
func (ai *AIClient) GenerateItineraryStream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateItineraryStream", trace.WithAttributes(
			attribute.Int("prompt.length", len(prompt)),
			attribute.String("model", ai.model),
		))
		defer span.End()

		if ai.client == nil {
			span.RecordError(ErrClientNotInitialized)
			span.SetStatus(codes.Error, "client not initialized")
			yield("", ErrClientNotInitialized)
			return
		}

		chunks := 0
		for resp, err := range ai.client.Models.GenerateContentStream(ctx, ai.model, genai.Text(prompt), ai.contentConfig()) {
			if err != nil {
				ai.logger.ErrorContext(ctx, "Itinerary stream failed", slog.Int("chunks", chunks), slog.Any("error", err))
				span.RecordError(err)
				span.SetStatus(codes.Error, "stream failed")
				yield("", fmt.Errorf("itinerary stream: %w", err))
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			chunks++
			if !yield(text, nil) {
				span.SetAttributes(attribute.Bool("stream.abandoned", true))
				return
			}
		}
		span.SetAttributes(attribute.Int("stream.chunks", chunks))
		span.SetStatus(codes.Ok, "stream completed")
	}
}
