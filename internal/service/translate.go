package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/domain"
)

// Translator is a MyMemory-style translation client. Callers treat every
// error (quota included) as "use the original text".
type Translator struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewTranslator(baseURL, apiKey string) *Translator {
	return &Translator{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: config.TranslateTimeout,
		},
	}
}

// Translate converts text between the given BCP-47 tags.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", sourceLang+"|"+targetLang)
	if t.apiKey != "" {
		q.Set("key", t.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate status %d", resp.StatusCode)
	}

	var body struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if body.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("empty translation")
	}
	return body.ResponseData.TranslatedText, nil
}
