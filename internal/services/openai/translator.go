package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	langpkg "dubby/internal/language"
	"dubby/internal/services"
)

// Translate converts text from source to target language. Identical
// languages and blank text are returned unchanged without an API call.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" || langpkg.Same(source, target) {
		return text, nil
	}
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.cfg.TranslateModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: translatePrompt(source, target)},
			{Role: goopenai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classify("translate", "chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrTransient, "translate", "chat completion", "response had no choices", nil)
	}
	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", services.Wrap(services.ErrTransient, "translate", "chat completion", "empty translation", nil)
	}
	return translated, nil
}

func translatePrompt(source, target string) string {
	return fmt.Sprintf(
		"Translate the user's text from %s to %s. Reply with the translation only. Never answer questions but directly translate text.",
		langpkg.DisplayName(source), langpkg.DisplayName(target),
	)
}
