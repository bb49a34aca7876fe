package line

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

const timeout = 10 * time.Second

// Replier sends reply messages for a webhook event
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages ...messaging_api.MessageInterface) error
}

// Client sends replies through the Messaging API
type Client struct {
	api *messaging_api.MessagingApiAPI
}

// ClientOption customises NewClient
type ClientOption func(*clientConfig)

type clientConfig struct {
	endpoint   string
	httpClient *http.Client
}

// WithEndpoint points the client at another API host, used in tests
func WithEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// NewClient creates a Messaging API client for the channel access token
func NewClient(accessToken string, opts ...ClientOption) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("channel access token is required")
	}

	cfg := &clientConfig{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(cfg)
	}

	apiOpts := []messaging_api.MessagingApiAPIOption{
		messaging_api.WithHTTPClient(cfg.httpClient),
	}
	if cfg.endpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(cfg.endpoint))
	}

	api, err := messaging_api.NewMessagingApiAPI(accessToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating messaging API client: %w", err)
	}

	return &Client{api: api}, nil
}

// Reply implements Replier. The SDK call is not context aware, so ctx is
// only checked before sending.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...messaging_api.MessageInterface) error {
	if replyToken == "" {
		return fmt.Errorf("reply token is required")
	}
	if len(messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}

	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	return nil
}
