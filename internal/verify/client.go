package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mr1hm/go-report-alerts/internal/fault"
)

// GenerativeClient calls the Gemini generateContent endpoint with a text
// prompt and one inline media attachment, returning the model's text reply.
type GenerativeClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGenerativeClient(apiKey, model string, timeout time.Duration) *GenerativeClient {
	return &GenerativeClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *GenerativeClient) WithBaseURL(u string) *GenerativeClient {
	c.baseURL = u
	return c
}

// GenerateContent submits the prompt plus inline media (base64, with its MIME
// type) and returns the concatenated text of the first candidate.
func (c *GenerativeClient) GenerateContent(ctx context.Context, prompt, mimeType, data string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: mimeType, Data: data}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", fault.ErrUpstreamUnavailable, err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", fault.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: analysis request: %v", fault.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status code: %d - status: %s", fault.ErrUpstreamUnavailable, resp.StatusCode, resp.Status)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", fault.ErrUpstreamUnavailable, err)
	}

	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", fault.ErrUpstreamUnavailable)
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// Gemini generateContent request/response types.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}
