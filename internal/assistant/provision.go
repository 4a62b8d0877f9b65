package assistant

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// instructions given to the assistant at provisioning time. The assistant
// partitions a newsletter body into topical issues using only verbatim
// sentences from the original text.
const instructions = `You extract the main topics from the plain-text body of an email newsletter and structure the original content per topic.

How to process:
1. The text you receive is the email body with HTML tags removed.
2. Do not paraphrase or summarize anything; group the sentences as they appear in the original into their main topics.
3. For each topic, collect the related sentences together.
4. Newsletters often open or close with platform promotion or the author's personal remarks. Exclude those sections.
5. There is no limit on how many topics you extract; follow whatever topics the body actually contains.
6. Respond with JSON only. No extra text, no explanations, no markdown, just the JSON itself.

Rules:
- Never summarize.
- Never translate.
- Never restructure or reinterpret the content.
- Only use sentences that appear in the original text.
- The response must be JSON and nothing else.

Example response format:
{
  "issues": [
    { "title": "Topic title 1", "content": "Related sentences" },
    { "title": "Topic title 2", "content": "Related sentences" }
  ]
}`

// Provision creates the newsletter assistant once and returns its id. The
// deployed pipeline never calls this; it always reuses the pre-provisioned
// id from configuration.
func Provision(ctx context.Context, client *openai.Client) (string, error) {
	name := "Newsletter Summarizer"
	instr := instructions
	a, err := client.CreateAssistant(ctx, openai.AssistantRequest{
		Name:         &name,
		Instructions: &instr,
		Model:        openai.GPT4Turbo,
		Tools:        []openai.AssistantTool{},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create assistant: %w", err)
	}
	return a.ID, nil
}
