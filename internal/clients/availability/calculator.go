package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/errs"
)

var (
	ErrAssistantDisabled = errors.New("availability assistant is disabled")
	ErrAssistantCall     = errors.New("availability assistant call failed")
	ErrAssistantResponse = errors.New("availability assistant returned an unusable response")
)

// Slot is a bookable interval the calculator proposes.
type Slot struct {
	StartsAt time.Time `json:"startTime"`
	EndsAt   time.Time `json:"endTime"`
}

// Result is the calculated availability plus a human-readable summary of the
// reasoning, surfaced verbatim in the booking widget.
type Result struct {
	Slots   []Slot `json:"availableSlots"`
	Summary string `json:"summary"`
}

// Input describes one availability question.
type Input struct {
	ServiceName     string
	DurationMinutes int
	// StaffSchedules maps a staff member's name to a free-form description of
	// their working hours and existing bookings on the requested date.
	StaffSchedules map[string]string
	ResourceNotes  string
	Preferences    string
	WindowStart    time.Time
	WindowEnd      time.Time
}

// Calculator answers availability questions for a service on a given date.
type Calculator interface {
	Calculate(ctx context.Context, in Input) (*Result, error)
}

// messageCreator is the slice of the anthropic client the calculator uses.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AssistantCalculator delegates the scheduling constraint problem to a
// language model and parses the structured answer back out.
type AssistantCalculator struct {
	messages messageCreator
	model    anthropic.Model
}

func NewAssistantCalculator(cfg config.Assistant) (*AssistantCalculator, error) {
	if !cfg.Enabled {
		return nil, ErrAssistantDisabled
	}

	apiKey, err := commoncfg.LoadValueFromSourceRef(cfg.APIKey)
	if err != nil {
		return nil, errs.Wrap(ErrAssistantCall, err)
	}

	client := anthropic.NewClient(option.WithAPIKey(string(apiKey)))

	return &AssistantCalculator{
		messages: &client.Messages,
		model:    anthropic.Model(cfg.Model),
	}, nil
}

const systemPrompt = `You are a scheduling engine for a bookings platform.
Given a service, its duration, staff schedules and resource constraints,
compute the open appointment slots inside the requested window.
Respond with ONLY a JSON object of the shape
{"availableSlots":[{"startTime":"RFC3339","endTime":"RFC3339"}],"summary":"..."}
and nothing else. Slots must not overlap existing bookings, must fit entirely
inside the window, and each slot must span exactly the service duration.`

func (c *AssistantCalculator) Calculate(ctx context.Context, in Input) (*Result, error) {
	schedules, err := json.Marshal(in.StaffSchedules)
	if err != nil {
		return nil, errs.Wrap(ErrAssistantCall, err)
	}

	question := fmt.Sprintf(
		"Service: %s\nDuration: %d minutes\nWindow: %s to %s\nStaff schedules: %s\nResources: %s\nCustomer preferences: %s",
		in.ServiceName,
		in.DurationMinutes,
		in.WindowStart.Format(time.RFC3339),
		in.WindowEnd.Format(time.RFC3339),
		schedules,
		in.ResourceNotes,
		in.Preferences,
	)

	resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 2048,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	})
	if err != nil {
		return nil, errs.Wrap(ErrAssistantCall, err)
	}

	var content strings.Builder

	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return parseResult(content.String())
}

// parseResult extracts the JSON object from the model output. Models
// occasionally wrap the object in prose or a code fence despite the prompt.
func parseResult(raw string) (*Result, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start < 0 || end <= start {
		return nil, errs.Wrapf(ErrAssistantResponse, "no JSON object in output")
	}

	var result Result

	err := json.Unmarshal([]byte(raw[start:end+1]), &result)
	if err != nil {
		return nil, errs.Wrap(ErrAssistantResponse, err)
	}

	for _, slot := range result.Slots {
		if !slot.EndsAt.After(slot.StartsAt) {
			return nil, errs.Wrapf(ErrAssistantResponse, "slot ends before it starts")
		}
	}

	return &result, nil
}
