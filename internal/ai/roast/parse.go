package roast

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sgoulden/vibecheck/pkg/models"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrEmptyResponse       = errors.New("ai provider returned empty response")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

const (
	// MaxTokens bounds the completion; a verdict fits comfortably.
	MaxTokens = 800
	// Temperature is raised above default for wittier output.
	Temperature = 0.8
)

// ChatMessage is one turn of a chat-completions conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the model for a JSON object reply.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the chat-completions request body shared by DeepSeek and
// OpenAI style endpoints.
type ChatRequest struct {
	Model          string         `json:"model"`
	Messages       []ChatMessage  `json:"messages"`
	ResponseFormat ResponseFormat `json:"response_format"`
	MaxTokens      int            `json:"max_tokens"`
	Temperature    float64        `json:"temperature"`
}

// ChatChoice is a single completion candidate in a reply.
type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// ChatResponse is the subset of a chat-completions reply we read.
type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
}

// BuildRequest assembles the full inference request for a summary.
func BuildRequest(model string, summary models.TasteSummary) ChatRequest {
	return ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: UserPrompt(summary)},
		},
		ResponseFormat: ResponseFormat{Type: "json_object"},
		MaxTokens:      MaxTokens,
		Temperature:    Temperature,
	}
}

// verdictWire mirrors the JSON object the model is instructed to emit.
// Pointers distinguish absent fields from zero values.
type verdictWire struct {
	RatingText           *string  `json:"rating_text"`
	RatingDescription    *string  `json:"rating_description"`
	CriticalAcclaimScore *float64 `json:"critical_acclaim_score"`
	MusicSnobScore       *float64 `json:"music_snob_score"`
}

// ParseVerdict validates a model reply. Every required field must be present;
// scores are clamped into [-1, 1] rather than rejected.
func ParseVerdict(content string) (models.Verdict, error) {
	if content == "" {
		return models.Verdict{}, ErrEmptyResponse
	}

	var wire verdictWire
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	switch {
	case wire.RatingText == nil || *wire.RatingText == "":
		return models.Verdict{}, fmt.Errorf("%w: missing rating_text", ErrInvalidResponse)
	case wire.RatingDescription == nil || *wire.RatingDescription == "":
		return models.Verdict{}, fmt.Errorf("%w: missing rating_description", ErrInvalidResponse)
	case wire.CriticalAcclaimScore == nil:
		return models.Verdict{}, fmt.Errorf("%w: missing critical_acclaim_score", ErrInvalidResponse)
	case wire.MusicSnobScore == nil:
		return models.Verdict{}, fmt.Errorf("%w: missing music_snob_score", ErrInvalidResponse)
	}

	return models.Verdict{
		RatingText:           *wire.RatingText,
		RatingDescription:    *wire.RatingDescription,
		CriticalAcclaimScore: clamp(*wire.CriticalAcclaimScore),
		MusicSnobScore:       clamp(*wire.MusicSnobScore),
	}, nil
}

// FirstChoice extracts the message content from a chat reply.
func FirstChoice(resp ChatResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
