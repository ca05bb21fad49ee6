package answer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/domain"
	"github.com/kailas-cloud/pagerag/internal/transport/ollama"
)

const contextSeparator = "\n\n---\n\n"

const promptTemplate = "You are a clinical coding assistant.\n" +
	"Use ONLY the information inside <context> to answer the question.\n" +
	"Answer in ONE short sentence. Do NOT reveal your reasoning.\n\n" +
	"<context>\n%s\n</context>\n\n" +
	"Question: %s\nAnswer:"

// Reasoning models emit their chain of thought inside think tags even when told not to.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Config holds generation options for answers.
type Config struct {
	Temperature float64
	MaxTokens   int
}

// Service grounds a question on retrieved pages and asks the model for a one-sentence answer.
type Service struct {
	gen    Generator
	cfg    Config
	logger *zap.Logger
}

// New creates an answer service.
func New(gen Generator, cfg Config, logger *zap.Logger) *Service {
	return &Service{gen: gen, cfg: cfg, logger: logger}
}

// Answer builds the context block from hits, in order, and generates the answer.
// With no hits the model is not called and the outcome is no_context.
func (s *Service) Answer(ctx context.Context, question string, hits []domain.Hit) (domain.Answer, error) {
	if len(hits) == 0 {
		s.logger.Warn("No context found", zap.String("question", question))
		return domain.Answer{Question: question, Outcome: domain.OutcomeNoContext}, nil
	}

	block := BuildContext(hits)
	s.logger.Debug("Context passed to model", zap.String("context", block))

	text, err := s.gen.Generate(ctx, BuildPrompt(block, question), ollama.Options{
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return domain.Answer{
		Question: question,
		Text:     StripReasoning(text),
		Outcome:  domain.OutcomeAnswered,
		Context:  block,
	}, nil
}

// BuildContext renders hits as "[PAGE n]\ntext" blocks separated by a horizontal rule.
func BuildContext(hits []domain.Hit) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = fmt.Sprintf("[PAGE %d]\n%s", h.Page, h.Text)
	}
	return strings.Join(parts, contextSeparator)
}

// BuildPrompt fills the answer template.
func BuildPrompt(contextBlock, question string) string {
	return fmt.Sprintf(promptTemplate, contextBlock, question)
}

// StripReasoning removes think blocks and surrounding whitespace.
func StripReasoning(text string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(text, ""))
}
