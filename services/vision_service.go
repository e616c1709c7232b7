package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Analyzer is the external vision model that turns a meal photo into a
// free-text nutritional estimate. It is a black box from the workflow's
// point of view: it returns either text or an error, never both.
type Analyzer interface {
	AnalyzeMealImage(ctx context.Context, image []byte, mimeType string) (string, error)
}

// ErrMissingAPIKey is returned when an analysis is attempted without the
// Gemini credential configured. The server still starts without it so the
// history endpoints keep working; only submissions fail.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not configured")

// mealPrompt instructs the model to estimate grams, derive calories from
// them, and answer in the exact template the macro extractor matches on.
const mealPrompt = `You are a nutrition expert. Look at this photo of a meal and estimate the grams of protein, carbohydrates and fat it contains. Compute calories as protein*4 + carbs*4 + fat*9.

Respond in exactly this format and nothing else:

# ⚡ <calories> Calories
**Protein:** <protein>g  |  **Carbs:** <carbs>g  |  **Fat:** <fat>g`

// GeminiService calls the Gemini generateContent endpoint with the image
// attached as inline data.
type GeminiService struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiService(apiKey, model string, timeout time.Duration) *GeminiService {
	return &GeminiService{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiService) AnalyzeMealImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: mealPrompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal analysis request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call analysis model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("analysis model returned %s: %s", resp.Status, string(body))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode analysis response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("analysis model returned no content")
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errors.New("analysis model returned empty text")
	}
	return text, nil
}
