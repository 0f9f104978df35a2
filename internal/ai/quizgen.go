package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

// QuizService wraps the Gemini client for quiz generation. Content quality is
// the model's business; the contract here is "N well-formed questions".
type QuizService struct {
	client *genai.Client
	model  string
}

func NewQuizService(ctx context.Context, apiKey string) (*QuizService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &QuizService{client: client, model: defaultModel}, nil
}

func (s *QuizService) Close() error {
	return s.client.Close()
}

type GeneratedQuestion struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}

func (s *QuizService) GenerateQuiz(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error) {
	if count < 1 || count > 25 {
		return nil, errors.New("question count must be between 1 and 25")
	}

	model := s.client.GenerativeModel(s.model)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(`
			You are the QUIZZQ quiz generator. Output ONLY a JSON array of
			question objects: {"prompt": string, "choices": [4 strings],
			"answer": index into choices}. No prose, no markdown.
		`)},
	}

	prompt := fmt.Sprintf(
		"Generate %d multiple-choice questions about %q at %s difficulty.",
		count, topic, difficulty,
	)

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("error generating quiz: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("empty model response")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, errors.New("unexpected response part type")
	}

	questions, err := parseQuizJSON(string(text))
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, errors.New("model returned no questions")
	}
	return questions, nil
}

// parseQuizJSON decodes the model output, tolerating markdown code fences the
// model sometimes wraps JSON in despite the MIME type hint.
func parseQuizJSON(raw string) ([]GeneratedQuestion, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("invalid quiz JSON: %w", err)
	}

	for i, q := range questions {
		if q.Prompt == "" || len(q.Choices) < 2 {
			return nil, fmt.Errorf("question %d malformed", i)
		}
		if q.Answer < 0 || q.Answer >= len(q.Choices) {
			return nil, fmt.Errorf("question %d answer index out of range", i)
		}
	}
	return questions, nil
}
