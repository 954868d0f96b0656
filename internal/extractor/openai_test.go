package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// fakeChatService returns a canned completion or error.
type fakeChatService struct {
	content string
	err     error
}

func (f *fakeChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newFakeOpenAIExtractor(content string, err error) *OpenAIExtractor {
	return &OpenAIExtractor{
		chat:     &fakeChatService{content: content, err: err},
		model:    openai.ChatModelGPT4oMini,
		fallback: NewKeywordExtractor(),
	}
}

func TestOpenAIExtractParsesJSON(t *testing.T) {
	e := newFakeOpenAIExtractor(`{"action":"invite_student","parameters":{"email":"john@gmail.com","course_name":"english"},"new_intent_detected":true}`, nil)
	candidate, err := e.Extract(context.Background(), "invite john to english", Hint{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Action != models.ActionInviteStudent {
		t.Errorf("action = %s", candidate.Action)
	}
	if candidate.Parameters[models.ParamEmail] != "john@gmail.com" {
		t.Errorf("email = %q", candidate.Parameters[models.ParamEmail])
	}
	if !candidate.NewIntentDetected {
		t.Error("new_intent_detected should carry through")
	}
}

func TestOpenAIExtractToleratesCodeFences(t *testing.T) {
	e := newFakeOpenAIExtractor("```json\n{\"action\":\"\",\"parameters\":{\"email\":\"a@x.com\"}}\n```", nil)
	candidate, err := e.Extract(context.Background(), "a@x.com", Hint{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Parameters[models.ParamEmail] != "a@x.com" {
		t.Errorf("email = %q", candidate.Parameters[models.ParamEmail])
	}
}

func TestOpenAIExtractFallsBackOnAPIError(t *testing.T) {
	e := newFakeOpenAIExtractor("", errors.New("rate limited"))
	candidate, err := e.Extract(context.Background(), "invite john@gmail.com to class english", Hint{})
	if err != nil {
		t.Fatalf("fallback should absorb the error, got %v", err)
	}
	if candidate.Action != models.ActionInviteStudent {
		t.Errorf("fallback action = %s, want invite_student", candidate.Action)
	}
}

func TestOpenAIExtractFallsBackOnGarbage(t *testing.T) {
	e := newFakeOpenAIExtractor("I think the user wants to invite someone!", nil)
	candidate, err := e.Extract(context.Background(), "invite john@gmail.com to class english", Hint{})
	if err != nil {
		t.Fatalf("fallback should absorb the parse failure, got %v", err)
	}
	if candidate.Parameters[models.ParamEmail] != "john@gmail.com" {
		t.Errorf("fallback email = %q", candidate.Parameters[models.ParamEmail])
	}
}

func TestNewOpenAIExtractorRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewOpenAIExtractor(); err == nil {
		t.Error("expected error without API key")
	}
}
