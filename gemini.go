package main

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ContentGenerator produces fresh sample content for both exercises.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, theme string) (*Content, error)
}

const generatePrompt = `Génère du contenu pour deux exercices de vocabulaire en anglais.

Thème : %s

Réponds au format JSON suivant :
{
  "question": "<consigne de l'exercice d'association>",
  "words": ["<MOT>", ...],
  "pairs": [
    {"left": "<élément>", "right": "<catégorie>"},
    ...
  ]
}

Règles :
- "words" contient 3 à 6 mots anglais de 4 à 7 lettres, en majuscules, sans espace ni accent.
- "pairs" contient 4 à 6 associations ; chaque "left" et chaque "right" est unique.
- Réponds UNIQUEMENT avec le JSON, sans commentaire ni markdown.`

// GenerateContent asks Gemini Flash for a new set of words and pairs.
func (g *GeminiClient) GenerateContent(ctx context.Context, theme string) (*Content, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = "vocabulaire général"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: fmt.Sprintf(generatePrompt, theme)}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.9)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	// JSON is a subset of YAML, so the content parser handles the response.
	c, err := ParseContent([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse content JSON: %w\nraw response: %s", err, text)
	}
	return c, nil
}
