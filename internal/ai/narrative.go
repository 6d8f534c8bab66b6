package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"marketdesk/internal/models"
	"marketdesk/pkg/utils"
)

// Narrator turns an analysis into a short plain-language commentary.
// With an API key it asks the LLM; without one it falls back to a
// rule-based summary, so narration never blocks an analysis.
type Narrator struct {
	client *openai.Client
	model  string
}

// NewNarrator creates a narrator. An empty apiKey selects the rule-based fallback.
func NewNarrator(apiKey, model string) *Narrator {
	n := &Narrator{model: model}
	if apiKey != "" {
		n.client = openai.NewClient(apiKey)
	}
	return n
}

// Narrate produces commentary for an analysis.
func (n *Narrator) Narrate(ctx context.Context, a *models.Analysis) (string, error) {
	if n.client == nil {
		return n.ruleBased(a), nil
	}

	narrative, err := utils.RetryWithResult(ctx, utils.DefaultRetryConfig(), func() (string, error) {
		return n.llmNarrate(ctx, a)
	})
	if err != nil {
		// The LLM is an enhancement; fall back rather than fail the analysis.
		return n.ruleBased(a), nil
	}
	return narrative, nil
}

func (n *Narrator) llmNarrate(ctx context.Context, a *models.Analysis) (string, error) {
	prompt := fmt.Sprintf(
		"You are a market analyst. In 2-3 sentences, explain this signal for %s: "+
			"signal=%s confidence=%.0f%% target=%.2f stop=%.2f. Model readings: %s",
		a.Symbol, a.Signal, a.Confidence, a.PriceTarget, a.StopLoss, a.Reasoning,
	)

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     n.model,
		MaxTokens: 200,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ruleBased composes the commentary from the consensus details.
func (n *Narrator) ruleBased(a *models.Analysis) string {
	var conviction string
	switch {
	case a.Confidence >= 75:
		conviction = "high conviction"
	case a.Confidence >= 50:
		conviction = "moderate conviction"
	default:
		conviction = "low conviction"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s with %s (%.0f%% confidence).", a.Symbol, a.Signal, conviction, a.Confidence)
	if a.Consensus != nil {
		fmt.Fprintf(&b, " %d of %d models agree on the direction.", a.Consensus.AgreeingModels, a.Consensus.TotalModels)
	}
	if a.Signal != models.SignalHold {
		fmt.Fprintf(&b, " Target %.2f, stop %.2f.", a.PriceTarget, a.StopLoss)
	}
	return b.String()
}
