package openai

import (
	"context"
	"errors"
)

// HealthCheck lists the available models to verify the API key and base URL.
// It does not retry.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("openai health: api key required")
	}
	if _, err := c.api.ListModels(ctx); err != nil {
		return classify("health", "list models", err)
	}
	return nil
}
