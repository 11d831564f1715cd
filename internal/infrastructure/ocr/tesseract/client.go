package tesseract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

// Client talks to a tesseract OCR sidecar over HTTP. The page image is sent
// base64-encoded; the service answers with recognized text and a confidence
// score between 0 and 100.
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

func New(baseURL, language string) *Client {
	if language == "" {
		language = "eng"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) Recognize(ctx context.Context, imagePath string) (domain.RecognitionResult, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return domain.RecognitionResult{}, fmt.Errorf("read page image: %w", err)
	}

	payload := map[string]any{
		"image":    base64.StdEncoding.EncodeToString(raw),
		"language": c.language,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.RecognitionResult{}, fmt.Errorf("marshal recognize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", bytes.NewReader(body))
	if err != nil {
		return domain.RecognitionResult{}, fmt.Errorf("create recognize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RecognitionResult{}, fmt.Errorf("tesseract recognize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return domain.RecognitionResult{}, fmt.Errorf("tesseract recognize status: %s: %s",
			resp.Status, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.RecognitionResult{}, fmt.Errorf("decode recognize response: %w", err)
	}
	return domain.RecognitionResult{Text: out.Text, Confidence: out.Confidence}, nil
}
