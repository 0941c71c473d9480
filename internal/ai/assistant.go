package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// EmailClassification is the structured triage verdict for one message.
type EmailClassification struct {
	Classification   string   `json:"classification"`
	Confidence       float64  `json:"confidence"`
	Summary          string   `json:"summary"`
	SuggestedReplies []string `json:"suggestedReplies"`
	ActionRequired   bool     `json:"actionRequired"`
	Priority         int      `json:"priority"`
}

// SuggestionDraft is one proposed proactive suggestion before persistence.
type SuggestionDraft struct {
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    int            `json:"priority"`
	ActionData  map[string]any `json:"actionData"`
}

// TaskDraft is a model-generated task from a freeform prompt.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate,omitempty"`
}

// UserContext is the bundle passed to the suggestion generator.
type UserContext struct {
	RecentEmails     []ContextEmail   `json:"recentEmails"`
	UpcomingMeetings []ContextMeeting `json:"upcomingMeetings"`
	PendingTasks     []ContextTask    `json:"pendingTasks"`
}

type ContextEmail struct {
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Date    string `json:"date"`
}

type ContextMeeting struct {
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	Attendees []string `json:"attendees"`
}

type ContextTask struct {
	Title   string `json:"title"`
	DueDate string `json:"dueDate,omitempty"`
}

// Assistant is the hosted-model boundary used by the services. Implemented by
// OpenAIAssistant; tests substitute fakes.
type Assistant interface {
	ClassifyEmail(ctx context.Context, sender, subject, body string) (*EmailClassification, error)
	DraftReply(ctx context.Context, sender, subject, body, replyType, instructions string) (string, error)
	GenerateSuggestions(ctx context.Context, uctx UserContext) ([]SuggestionDraft, error)
	DraftTask(ctx context.Context, prompt string) (*TaskDraft, error)
}

// OpenAIAssistant calls the OpenAI chat-completions API.
type OpenAIAssistant struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIAssistant(apiKey, model string, timeout time.Duration) *OpenAIAssistant {
	return &OpenAIAssistant{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

const classifySystemPrompt = `You are an AI email assistant that classifies emails and generates helpful responses. Analyze the email and provide:
1. Classification (urgent/normal/low/spam)
2. Confidence score (0-1)
3. Brief summary (1-2 sentences)
4. 3 suggested reply options
5. Whether action is required
6. Priority score (1-10)

Respond with JSON in this exact format: {
  "classification": "urgent|normal|low|spam",
  "confidence": 0.85,
  "summary": "Brief summary here",
  "suggestedReplies": ["Reply 1", "Reply 2", "Reply 3"],
  "actionRequired": true,
  "priority": 8
}`

func (a *OpenAIAssistant) ClassifyEmail(ctx context.Context, sender, subject, body string) (*EmailClassification, error) {
	content, err := a.jsonCompletion(ctx, classifySystemPrompt,
		fmt.Sprintf("Email from: %s\nSubject: %s\nBody: %s", sender, subject, body))
	if err != nil {
		return nil, fmt.Errorf("failed to classify email: %w", err)
	}

	var result EmailClassification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}

	switch result.Classification {
	case "urgent", "normal", "low", "spam":
	default:
		result.Classification = "normal"
	}
	if result.Priority < 1 {
		result.Priority = 1
	}
	if result.Priority > 10 {
		result.Priority = 10
	}
	return &result, nil
}

const draftReplySystemPrompt = `You are an AI email assistant that drafts professional email replies. Write a clear, concise, and appropriate response based on the original email and reply type requested.`

func (a *OpenAIAssistant) DraftReply(ctx context.Context, sender, subject, body, replyType, instructions string) (string, error) {
	prompt := fmt.Sprintf("Original email from %s:\nSubject: %s\nBody: %s\n\nDraft a %s reply",
		sender, subject, body, replyType)
	if instructions != "" {
		prompt += " with these instructions: " + instructions
	}
	prompt += "."

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: draftReplySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to draft reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("failed to draft reply: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

const suggestionsSystemPrompt = `You are an AI productivity assistant that analyzes user patterns and suggests proactive actions. Based on the user's recent activity, generate helpful suggestions. Respond with a JSON object {"suggestions": [...]} where each suggestion has this format:
{
  "type": "email_follow_up|meeting_preparation|task_reminder|schedule_optimization",
  "title": "Short actionable title",
  "description": "Detailed description of the suggestion",
  "priority": 1-10,
  "actionData": {"key": "value"}
}`

func (a *OpenAIAssistant) GenerateSuggestions(ctx context.Context, uctx UserContext) ([]SuggestionDraft, error) {
	bundle, err := json.Marshal(uctx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user context: %w", err)
	}

	content, err := a.jsonCompletion(ctx, suggestionsSystemPrompt, "User context:\n"+string(bundle))
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}
	return ParseSuggestions(content)
}

const draftTaskSystemPrompt = `You are an AI task assistant. Turn the user's freeform request into a single actionable task. Respond with JSON in this exact format: {
  "title": "Short task title",
  "description": "What needs to be done",
  "priority": "low|normal|high|urgent",
  "dueDate": "RFC3339 timestamp or empty string"
}`

func (a *OpenAIAssistant) DraftTask(ctx context.Context, prompt string) (*TaskDraft, error) {
	content, err := a.jsonCompletion(ctx, draftTaskSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to draft task: %w", err)
	}

	var draft TaskDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse task draft: %w", err)
	}
	if draft.Title == "" {
		return nil, fmt.Errorf("failed to draft task: empty title")
	}
	switch draft.Priority {
	case "low", "normal", "high", "urgent":
	default:
		draft.Priority = "normal"
	}
	return &draft, nil
}

// jsonCompletion runs a chat completion in JSON mode and returns the raw
// content with any stray code fences stripped.
func (a *OpenAIAssistant) jsonCompletion(ctx context.Context, system, user string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return StripFences(resp.Choices[0].Message.Content), nil
}

// StripFences removes a surrounding markdown code fence if the model ignored
// the JSON-only instruction.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 2 {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return content
}

// ParseSuggestions decodes the suggestion payload, accepting either a bare
// array or an object wrapping a "suggestions" array.
func ParseSuggestions(content string) ([]SuggestionDraft, error) {
	content = StripFences(content)

	var drafts []SuggestionDraft
	if err := json.Unmarshal([]byte(content), &drafts); err == nil {
		return drafts, nil
	}

	var wrapped struct {
		Suggestions []SuggestionDraft `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	return wrapped.Suggestions, nil
}
