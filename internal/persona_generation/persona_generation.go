package personageneration

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/redditpersona/internal/clients"
	"github.com/spacesedan/redditpersona/internal/models"
)

// Completer is the slice of the LLM client the generator needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*clients.Completion, error)
}

type Generator struct {
	llm         Completer
	rawFallback bool
}

// Result is a parsed persona plus whatever sources the provider cited.
type Result struct {
	Persona   *models.Persona
	Citations []string
}

// NewGenerator builds a generator. With rawFallback set, unparseable replies come
// back as a persona holding only Raw instead of a ParseError.
func NewGenerator(llm Completer, rawFallback bool) *Generator {
	return &Generator{llm: llm, rawFallback: rawFallback}
}

func (g *Generator) GeneratePersona(ctx context.Context, data *models.RedditUserData) (*Result, error) {
	prompt, err := BuildPersonaPrompt(data)
	if err != nil {
		return nil, err
	}

	slog.Info("[PersonaGenerator] Requesting persona",
		slog.String("username", data.Username),
		slog.Int("prompt_length", len(prompt)))

	start := time.Now()
	completion, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Error("[PersonaGenerator] Persona request failed",
			slog.String("username", data.Username),
			slog.String("error", err.Error()))
		return nil, err
	}

	persona, err := ParsePersona(completion.Content)
	if err != nil {
		var perr *ParseError
		if g.rawFallback && errors.As(err, &perr) {
			slog.Warn("[PersonaGenerator] Returning raw persona text",
				slog.String("username", data.Username))
			return &Result{Persona: &models.Persona{Raw: completion.Content}, Citations: completion.Citations}, nil
		}
		slog.Error("[PersonaGenerator] Failed to parse persona",
			slog.String("username", data.Username),
			slog.String("error", err.Error()),
			slog.String("raw_response", truncate(completion.Content, 200)))
		return nil, err
	}

	slog.Info("[PersonaGenerator] Persona generated",
		slog.String("username", data.Username),
		slog.String("archetype", persona.Archetype.String()),
		slog.Duration("elapsed", time.Since(start)))

	return &Result{Persona: persona, Citations: completion.Citations}, nil
}

// SimulatePost returns one post written in the user's voice, fences removed.
func (g *Generator) SimulatePost(ctx context.Context, data *models.RedditUserData) (string, error) {
	prompt, err := BuildSimulatedPostPrompt(data)
	if err != nil {
		return "", err
	}

	completion, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Error("[PersonaGenerator] Simulated post request failed",
			slog.String("username", data.Username),
			slog.String("error", err.Error()))
		return "", err
	}

	post := cleanLLMResponse(completion.Content)
	if post == "" {
		return "", &ParseError{Raw: completion.Content, Err: errors.New("empty simulated post")}
	}
	return strings.TrimSpace(post), nil
}
