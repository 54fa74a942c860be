package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"fincast/internal/output"

	"github.com/ayush6624/go-chatgpt"
)

type ExplainRepository interface {
	ExplainResult(ctx context.Context, result *output.Result) (string, error)
}

type explainRepositoryHandler struct {
	GptClient *chatgpt.Client
}

func NewExplainRepository(apiKey string) (ExplainRepository, error) {
	client, err := chatgpt.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to construct gpt client: %w", err)
	}

	return explainRepositoryHandler{
		GptClient: client,
	}, nil
}

const explainPrompt = `
You are a financial analyst reviewing the output of a deterministic day-by-day
household projection. You will receive the run's summary metrics as JSON:
final and expected balances with 5th/95th percentiles, bankruptcy probability
and timing, worst drawdown, resilience index, credit score range, net asset
value, liquidity ratio, and an overall health score with qualitative tiers.

Explain in plain English, for a non-expert, what the projection says about
this household's financial trajectory. Call out the biggest risk factor and
one concrete improvement lever. Keep it under 200 words. Do not restate raw
numbers the reader can already see; interpret them.

Here are the metrics:
`

func (h explainRepositoryHandler) ExplainResult(ctx context.Context, result *output.Result) (string, error) {
	// strip the day-by-day histories; the summary scalars are enough and
	// the full packet can exceed the model's context
	summary := *result
	summary.BalanceHistory = nil
	summary.CreditHistory = nil
	summary.NAVHistory = nil
	summary.LiquidityHistory = nil

	packet, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result for explanation: %w", err)
	}

	resp, err := h.GptClient.SimpleSend(ctx, explainPrompt+string(packet))
	if err != nil {
		return "", fmt.Errorf("failed to request explanation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("explanation response contained no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
