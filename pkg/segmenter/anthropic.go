package segmenter

import (
	"context"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// retryAttempts is the max number of attempts for the segmentation call.
const retryAttempts = 3

// Options configures the Anthropic-backed client.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature *float64
}

// anthropicClient implements Client using the official anthropic-sdk-go.
type anthropicClient struct {
	client sdk.Client
	opts   Options
}

// NewAnthropicClient creates a segmentation client backed by the SDK.
func NewAnthropicClient(apiKey string, opts Options) Client {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 4096
	}
	return &anthropicClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		opts:   opts,
	}
}

func (c *anthropicClient) Segment(ctx context.Context, req Request) (*Result, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.opts.Model),
		MaxTokens: c.opts.MaxTokens,
		System: []sdk.TextBlockParam{
			{Text: BuildSystemPrompt(req.RosterJSON, req.TeamsJSON, req.CoachesJSON)},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock("Voice note transcript:\n\n" + req.Transcript)),
		},
	}
	if c.opts.Temperature != nil {
		params.Temperature = sdk.Float(*c.opts.Temperature)
	}

	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		msg, err := c.client.Messages.New(ctx, params)
		if err != nil {
			lastErr = err
			zap.L().Warn("segmenter: create message failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "segmenter: canceled")
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			continue
		}
		return Parse(collectText(msg))
	}
	return nil, eris.Wrap(lastErr, "segmenter: create message")
}

func collectText(msg *sdk.Message) string {
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}
