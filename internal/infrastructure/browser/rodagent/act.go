package rodagent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

var _ output.PageAgent = (*Agent)(nil)

// actMaxIterations bounds one Act instruction's tool loop.
const actMaxIterations = 5

const actSystemPrompt = `You operate a web browser for a home-services concierge.
Execute exactly the instruction you are given using the available tools, then
answer with one short sentence describing what happened (or why it was not
possible). Never click a control that finally submits or sends a form unless
the instruction explicitly asks for it. If the instruction cannot be carried
out, say so plainly (e.g. "no such button on this page").`

// Agent executes natural-language instructions against one Session via
// a bounded LLM tool loop.
type Agent struct {
	session *Session
	llm     output.LLMPort
	logger  output.LoggerPort
}

func NewAgent(session *Session, llm output.LLMPort, logger output.LoggerPort) *Agent {
	return &Agent{session: session, llm: llm, logger: logger}
}

func (a *Agent) Observe(ctx context.Context) ([]string, error) {
	return a.session.observeLines(ctx)
}

func (a *Agent) Act(ctx context.Context, instruction string) (string, error) {
	obs, err := a.session.observeLines(ctx)
	if err != nil {
		a.logger.Warn("Observation for act failed", "error", err)
	}

	user := instruction
	if len(obs) > 0 {
		user += "\n\nCurrent page elements:\n" + strings.Join(obs, "\n")
	}

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: actSystemPrompt},
		{Role: entity.RoleUser, Content: user},
	}

	for iteration := 1; iteration <= actMaxIterations; iteration++ {
		resp, err := a.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefinitions(),
			Temperature: 0.0,
		})
		if err != nil {
			return "", fmt.Errorf("act llm request failed: %w", err)
		}

		messages = append(messages, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			return resp.Message.Content, nil
		}

		for _, tc := range resp.Message.ToolCalls {
			result := a.executeTool(ctx, tc)
			messages = append(messages, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    result,
			})
		}
	}

	return "", fmt.Errorf("act did not settle within %d iterations", actMaxIterations)
}

func (a *Agent) executeTool(ctx context.Context, tc entity.ToolCall) string {
	a.logger.Debug("Executing browser tool", "name", tc.Name, "args", tc.Arguments)

	var result string
	var err error
	switch tc.Name {
	case "click":
		result, err = a.session.click(ctx, tc.Arguments)
	case "fill":
		result, err = a.session.fill(ctx, tc.Arguments)
	case "press_enter":
		result, err = a.session.pressEnter(ctx)
	default:
		return fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
	}
	if err != nil {
		a.logger.Warn("Browser tool failed", "name", tc.Name, "error", err)
		return "Error: " + err.Error()
	}
	return result
}

func toolDefinitions() []entity.ToolDefinition {
	return []entity.ToolDefinition{
		{
			Name:        "click",
			Description: "Clicks the first visible element matched by a CSS selector, or by its visible text when no selector is known.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"selector": map[string]interface{}{
						"type":        "string",
						"description": `CSS selector, e.g. "button#submit". Leave empty when clicking by text.`,
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Visible text of the button or link to click.",
					},
				},
			},
		},
		{
			Name:        "fill",
			Description: "Clears the input matched by the CSS selector and types the given text into it.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"selector": map[string]interface{}{
						"type": "string",
					},
					"text": map[string]interface{}{
						"type": "string",
					},
				},
				"required": []string{"selector", "text"},
			},
		},
		{
			Name:        "press_enter",
			Description: "Presses the Enter key on the page.",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

type clickArgs struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

type fillArgs struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

func (s *Session) click(ctx context.Context, rawArgs string) (string, error) {
	var args clickArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid click input: %w", err)
	}

	var el *rod.Element
	var err error
	switch {
	case strings.TrimSpace(args.Selector) != "":
		el, err = s.page.Context(ctx).Timeout(s.timeout).Element(args.Selector)
	case strings.TrimSpace(args.Text) != "":
		pattern := regexp.QuoteMeta(strings.TrimSpace(args.Text))
		el, err = s.page.Context(ctx).Timeout(s.timeout).
			ElementR("button, [role='button'], a, input[type='submit'], input[type='button'], label", pattern)
	default:
		return "", fmt.Errorf("click needs a selector or text")
	}
	if err != nil {
		return "", fmt.Errorf("element not found: %w", err)
	}

	_ = el.ScrollIntoView()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("click failed: %w", err)
	}
	s.page.WaitIdle(2 * time.Second)
	s.frames = nil
	return "clicked", nil
}

func (s *Session) fill(ctx context.Context, rawArgs string) (string, error) {
	var args fillArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid fill input: %w", err)
	}
	if args.Selector == "" {
		return "", fmt.Errorf("fill needs a selector")
	}

	if err := s.FillField(ctx, &output.FormField{Selector: args.Selector, Frame: -1}, args.Text); err != nil {
		return "", err
	}
	return "filled", nil
}

func (s *Session) pressEnter(ctx context.Context) (string, error) {
	el, err := s.page.Context(ctx).Timeout(s.timeout).Element("body")
	if err != nil {
		return "", fmt.Errorf("body not found: %w", err)
	}
	if err := el.Input("\r"); err != nil {
		return "", fmt.Errorf("failed to press Enter: %w", err)
	}
	s.page.WaitIdle(1 * time.Second)
	return "pressed enter", nil
}
