package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// Provider is the interface for text-understanding providers.
// Complete sends a system/user prompt pair and returns the raw response text.
// When expectJSON is set, providers that support it request structured output.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, expectJSON bool) (string, error)
	IsConfigured() bool
}

// XAIProvider talks to xAI's OpenAI-compatible chat completions API.
type XAIProvider struct {
	Model   string
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewXAIProvider creates an xAI provider reading the API key from apiKeyEnv.
func NewXAIProvider(model, baseURL, apiKeyEnv string) *XAIProvider {
	return &XAIProvider{
		Model:   model,
		BaseURL: baseURL,
		APIKey:  os.Getenv(apiKeyEnv),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (x *XAIProvider) IsConfigured() bool {
	return x.APIKey != ""
}

// Complete sends the prompts to xAI and returns the response text.
func (x *XAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, expectJSON bool) (string, error) {
	if x.APIKey == "" {
		return "", fmt.Errorf("xAI API key not configured")
	}

	body := map[string]any{
		"model": x.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": temperature,
	}
	if expectJSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", x.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+x.APIKey)

	resp, err := x.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("xAI API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("xAI API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in xAI response")
	}

	return result.Choices[0].Message.Content, nil
}

// OllamaProvider is a local Ollama provider, useful for offline analysis runs.
type OllamaProvider struct {
	Model   string
	BaseURL string
	client  *http.Client
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(model, baseURL string) *OllamaProvider {
	return &OllamaProvider{
		Model:   model,
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured checks if Ollama is running and the model is available.
func (o *OllamaProvider) IsConfigured() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", o.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	modelBase := strings.SplitN(o.Model, ":", 2)[0]
	for _, m := range result.Models {
		if strings.Contains(m.Name, modelBase) {
			return true
		}
	}
	log.Printf("Ollama model %q not found", o.Model)
	return false
}

// Complete sends the prompts to Ollama and returns the response text.
func (o *OllamaProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, expectJSON bool) (string, error) {
	body := map[string]any{
		"model": o.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"stream": false,
		"options": map[string]any{
			"temperature": temperature,
		},
	}
	if expectJSON {
		body["format"] = "json"
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.BaseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.Message.Content, nil
}

// CreateProvider creates a provider based on configuration, falling back to
// Ollama when the primary xAI provider has no API key. Returns nil when no
// provider is usable.
func CreateProvider(provider, model, baseURL, apiKeyEnv, ollamaModel, ollamaURL string) Provider {
	if strings.ToLower(provider) == "ollama" {
		p := NewOllamaProvider(ollamaModel, ollamaURL)
		if p.IsConfigured() {
			log.Printf("Using Ollama with model: %s", ollamaModel)
			return p
		}
		log.Println("Ollama not available, trying xAI fallback...")
	}

	p := NewXAIProvider(model, baseURL, apiKeyEnv)
	if p.IsConfigured() {
		log.Printf("Using xAI with model: %s", model)
		return p
	}

	o := NewOllamaProvider(ollamaModel, ollamaURL)
	if o.IsConfigured() {
		log.Printf("xAI not configured, using Ollama with model: %s", ollamaModel)
		return o
	}

	log.Printf("No text-understanding provider available. Set %s or start Ollama.", apiKeyEnv)
	return nil
}
