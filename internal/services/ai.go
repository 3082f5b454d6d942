package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/task-colab-api/internal/models"
)

// TaskSuggester proposes a task breakdown for a project.
type TaskSuggester interface {
	SuggestTasks(ctx context.Context, project *models.Project) ([]SuggestedTask, error)
}

type AIService struct {
	client *openai.Client
}

// SuggestedTask is one AI proposed task. Suggestions are never persisted.
type SuggestedTask struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Priority       models.Priority `json:"priority"`
	EstimatedHours *float64        `json:"estimated_hours"`
	DueDate        *time.Time      `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// SuggestTasks asks the model to break a project down into ordered tasks
func (s *AIService) SuggestTasks(ctx context.Context, project *models.Project) ([]SuggestedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format(time.RFC3339)
	prompt := fmt.Sprintf(`You are a project planning assistant. Break the following freelance project into concrete, ordered tasks for the developer who will deliver it.

Current time: %s

Project title: %s
Category: %s
Deadline: %s
Requirements:
%s

Description:
%s

Return a JSON array of tasks in this format:
[
  {
    "title": "short task title",
    "description": "what has to be done",
    "priority": "low | medium | high | urgent",
    "estimated_hours": 4,
    "due_date": "ISO8601 date before the project deadline, or null"
  }
]

Rules:
- Return an empty array [] when the project cannot be broken down
- Return at most 20 tasks
- Return JSON only, without any explanation`,
		currentTime,
		project.Title,
		project.Category,
		project.Timeline.Deadline.Format(time.RFC3339),
		"- "+strings.Join(project.Requirements, "\n- "),
		project.Description,
	)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestedTasks(resp.Choices[0].Message.Content)
}

// parseSuggestedTasks decodes the model output, tolerating a markdown code fence.
func parseSuggestedTasks(content string) ([]SuggestedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var tasks []SuggestedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
