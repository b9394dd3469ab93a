// Package ai generates narrative content for persons in the tree by
// calling a chat-completion model: historical context for their lifetime,
// a short biography, and predictive gap-filling for missing facts.
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/arbormap/lineagebackend/models"
)

// Narrator is the narrative-generation boundary the handlers depend on,
// so tests can substitute a fake.
type Narrator interface {
	Generate(ctx context.Context, kind string, person models.Person, parents []models.Person) (string, error)
	Model() string
}

// Client calls the OpenAI chat completion API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds a narrator for the given API key and model. An empty
// key returns an error; callers decide whether narration is optional.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{client: openai.NewClient(apiKey), model: model}, nil
}

// Model returns the configured model name, recorded alongside cached
// narratives.
func (c *Client) Model() string {
	return c.model
}

const systemPrompt = "You are a careful genealogy assistant. You write short, factual, " +
	"engaging prose about ancestors based on the structured facts you are given. " +
	"When facts are missing you say so or clearly mark speculation as such. " +
	"Respond with plain text, no markdown headings."

// Generate produces the requested narrative kind for a person. The prompt
// carries only the recorded facts; the model is explicitly told to flag
// speculation.
func (c *Client) Generate(ctx context.Context, kind string, person models.Person, parents []models.Person) (string, error) {
	prompt, err := buildPrompt(kind, person, parents)
	if err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai: model returned no choices")
	}

	log.Printf("ai: generated %s narrative for person %d (finish: %s)", kind, person.ID, resp.Choices[0].FinishReason)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(kind string, person models.Person, parents []models.Person) (string, error) {
	facts := personFacts(person, parents)
	switch kind {
	case models.NarrativeHistoricalContext:
		return fmt.Sprintf(
			"Describe, in two or three paragraphs, the historical period and place this person lived through and what daily life would plausibly have looked like for them.\n\n%s",
			facts), nil
	case models.NarrativeBiography:
		return fmt.Sprintf(
			"Write a short biography (two paragraphs) of this person from the recorded facts. Do not invent names, dates, or events.\n\n%s",
			facts), nil
	case models.NarrativeGapPrediction:
		return fmt.Sprintf(
			"List the most important missing facts in this record (unknown years, unrecorded parents, missing places) and, for each, a plausible estimate with reasoning, clearly marked as an estimate.\n\n%s",
			facts), nil
	default:
		return "", fmt.Errorf("ai: unknown narrative kind %q", kind)
	}
}

func personFacts(person models.Person, parents []models.Person) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", person.Name)
	fmt.Fprintf(&b, "Gender: %s\n", person.Gender)
	fmt.Fprintf(&b, "Birth year: %s\n", yearOrUnknown(person.BirthYear))
	fmt.Fprintf(&b, "Death year: %s\n", yearOrUnknown(person.DeathYear))
	if person.Country != "" {
		fmt.Fprintf(&b, "Country: %s\n", person.Country)
	}
	for _, parent := range parents {
		role := "Parent"
		switch parent.Gender {
		case models.GenderMale:
			role = "Father"
		case models.GenderFemale:
			role = "Mother"
		}
		fmt.Fprintf(&b, "%s: %s (born %s)\n", role, parent.Name, yearOrUnknown(parent.BirthYear))
	}
	if person.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", person.Notes)
	}
	return b.String()
}

func yearOrUnknown(y *int) string {
	if y == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *y)
}
