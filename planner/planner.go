package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wproject-studio/toko-admin/dispatch"
	"github.com/wproject-studio/toko-admin/shop"
)

// Plan is what one chat turn produced: a reply for the operator and,
// when the message asked for a data change, the structured action to
// execute. A nil Action means reply-only.
type Plan struct {
	Reply  string
	Action *dispatch.Action
}

// Planner asks the model for a Plan. It never returns an error: every
// upstream or parsing failure degrades to a reply-only Plan so the
// chat stays usable.
type Planner struct {
	client CompletionClient
	log    *zap.Logger
}

func New(client CompletionClient, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{client: client, log: log}
}

const (
	replyNotConfigured = "The AI service is not configured yet (OPENAI_API_KEY is empty). You can still manage the shop through the admin pages manually."

	replyQuotaExceeded = "The AI service is currently out of quota or inactive. You can still manage products and purchases through the admin menu as usual.\n\n" +
		"If you are the developer, check the plan & billing on the OpenAI dashboard or replace OPENAI_API_KEY."
)

// Plan sends the conversation plus role context to the model and
// parses its JSON answer.
func (p *Planner) Plan(ctx context.Context, messages []Message, user *shop.User) Plan {
	prompt := append([]Message{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: userContext(user)},
	}, messages...)

	content, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return p.recover(err)
	}

	var parsed struct {
		Reply  string           `json:"reply"`
		Action *dispatch.Action `json:"action"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		// The model ignored the JSON instruction. Its text is still the
		// best reply we have.
		p.log.Warn("model output was not valid JSON", zap.Error(err))
		return Plan{Reply: strings.TrimSpace(content)}
	}

	plan := Plan{Reply: strings.TrimSpace(parsed.Reply), Action: parsed.Action}

	// Guests never get actions, whatever the model planned.
	if user == nil && plan.Action != nil {
		p.log.Warn("dropping planned action for guest turn",
			zap.String("entity", plan.Action.Entity),
			zap.String("operation", plan.Action.Operation))
		plan.Action = nil
	}
	return plan
}

// recover maps a model failure onto the reply-only Plan the operator
// should see.
func (p *Planner) recover(err error) Plan {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return Plan{Reply: replyNotConfigured}
	case errors.Is(err, ErrQuotaExceeded):
		p.log.Warn("planner quota exceeded")
		return Plan{Reply: replyQuotaExceeded}
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		p.log.Error("planner upstream failure",
			zap.Int("status", upstream.Status), zap.String("detail", upstream.Message))
		return Plan{Reply: fmt.Sprintf(
			"Sorry, something went wrong while contacting the AI service (status %d). Detail: %s",
			upstream.Status, upstream.Message)}
	}

	p.log.Error("planner request failed", zap.Error(err))
	return Plan{Reply: "Sorry, something went wrong while contacting the AI service. Detail: " + err.Error()}
}
