package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

const extractionSystemPrompt = `You extract structured classroom commands from teacher messages.
Known actions and their parameters:
- invite_student: email, course_name
- remove_student: email, course_name
- create_announcement: course_name, title, body
- create_assignment: course_name, title, due_date, due_time

Respond with ONLY a JSON object, no prose, in this shape:
{"action":"<action or empty string>","parameters":{"<name>":"<value>"},"correction_marker":<bool>,"new_intent_detected":<bool>}

Rules:
- Set "action" only when the message clearly states a command; leave it empty for bare answers to a previous question.
- Set "new_intent_detected" true only when the message reads as a fresh request rather than a follow-up detail.
- Set "correction_marker" true when the user is fixing an earlier value ("actually", "I meant", "sorry, it's ...").
- Keep date and time values verbatim ("next friday", "5 pm"); do not convert them.
- Omit parameters that are not present in the message.`

// chatService defines the minimal chat-completion surface used by the
// extractor, so tests can inject a fake.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIOpts holds configuration options for the OpenAI extractor.
type OpenAIOpts struct {
	APIKey string
	Model  openai.ChatModel
}

// OpenAIOption defines a configuration option for the OpenAI extractor.
type OpenAIOption func(*OpenAIOpts)

// WithAPIKey sets the OpenAI API key, overriding the OPENAI_API_KEY variable.
func WithAPIKey(key string) OpenAIOption {
	return func(o *OpenAIOpts) { o.APIKey = key }
}

// WithModel sets the chat model used for extraction.
func WithModel(model openai.ChatModel) OpenAIOption {
	return func(o *OpenAIOpts) { o.Model = model }
}

// OpenAIExtractor extracts candidates with an OpenAI chat completion. On any
// API or parse failure it falls back to the deterministic keyword extractor so
// a turn is never lost to the upstream service.
type OpenAIExtractor struct {
	chat     chatService
	model    openai.ChatModel
	fallback *KeywordExtractor
}

// NewOpenAIExtractor initializes the extractor, reading OPENAI_API_KEY when no
// key option is provided.
func NewOpenAIExtractor(opts ...OpenAIOption) (*OpenAIExtractor, error) {
	cfg := OpenAIOpts{Model: openai.ChatModelGPT4oMini}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &OpenAIExtractor{
		chat:     &cli.Chat.Completions,
		model:    cfg.Model,
		fallback: NewKeywordExtractor(),
	}, nil
}

// Extract implements Extractor.
func (e *OpenAIExtractor) Extract(ctx context.Context, message string, hint Hint) (models.CorrectionCandidate, error) {
	userPrompt := buildUserPrompt(message, hint)
	resp, err := e.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionSystemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		slog.Warn("OpenAIExtractor.Extract: API call failed, falling back to keywords", "error", err)
		return e.fallback.Extract(ctx, message, hint)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAIExtractor.Extract: no choices returned, falling back to keywords")
		return e.fallback.Extract(ctx, message, hint)
	}

	candidate, err := parseCandidateJSON(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Warn("OpenAIExtractor.Extract: unparseable response, falling back to keywords", "error", err)
		return e.fallback.Extract(ctx, message, hint)
	}
	slog.Debug("OpenAIExtractor.Extract: done", "action", candidate.Action, "params", len(candidate.Parameters))
	return candidate, nil
}

// buildUserPrompt folds the prior-context hint into the user message so the
// model can attribute bare answers correctly.
func buildUserPrompt(message string, hint Hint) string {
	var b strings.Builder
	if hint.OngoingAction != "" {
		fmt.Fprintf(&b, "Action in progress: %s.\n", hint.OngoingAction)
	}
	if hint.NextParameter != "" {
		fmt.Fprintf(&b, "The user was just asked for: %s.\n", hint.NextParameter)
	}
	fmt.Fprintf(&b, "Message: %s", message)
	return b.String()
}

// parseCandidateJSON decodes the model's JSON reply, tolerating code fences.
func parseCandidateJSON(content string) (models.CorrectionCandidate, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var candidate models.CorrectionCandidate
	if err := json.Unmarshal([]byte(cleaned), &candidate); err != nil {
		return models.CorrectionCandidate{}, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if candidate.Parameters == nil {
		candidate.Parameters = make(map[string]string)
	}
	return candidate, nil
}
