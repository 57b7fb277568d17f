package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/matchload/internal/domain/analysis"
	"github.com/okian/matchload/pkg/metrics"
)

// DefaultMistralURL is the Mistral API host.
const DefaultMistralURL = "https://api.mistral.ai"

// DefaultMistralModel is the chat model used for analyses.
const DefaultMistralModel = "mistral-small"

// Mistral is a chat-completion client.
type Mistral struct {
	base
	apiKey string
	model  string
}

var _ analysis.Completer = (*Mistral)(nil)

// NewMistral returns a client for model. Completions are not cached here;
// the analyzer memoizes answers.
func NewMistral(apiKey, model string, opts ...Option) *Mistral {
	if model == "" {
		model = DefaultMistralModel
	}
	opts = append([]Option{WithTimeout(90 * time.Second)}, opts...)
	return &Mistral{base: newBase("mistral", DefaultMistralURL, 0, opts), apiKey: apiKey, model: model}
}

// Complete sends messages and returns the first choice.
func (m *Mistral) Complete(ctx context.Context, messages []analysis.Message) (answer string, err error) {
	if m.apiKey == "" {
		return "", ErrNoAPIKey
	}
	start := time.Now()
	defer func() {
		metrics.RecordUpstream(m.upstream, float64(time.Since(start).Milliseconds()), err)
	}()

	payload, err := json.Marshal(struct {
		Model    string             `json:"model"`
		Messages []analysis.Message `json:"messages"`
	}{m.model, messages})
	if err != nil {
		return "", fmt.Errorf("mistral: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	header := http.Header{
		"Authorization": {"Bearer " + m.apiKey},
		"Content-Type":  {"application/json"},
		"Accept":        {"application/json"},
	}
	body, err := m.do(ctx, http.MethodPost, m.baseURL+"/v1/chat/completions", header, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var res struct {
		Choices []struct {
			Message analysis.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("mistral: %w: decode: %v", ErrUpstream, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("mistral: %w: no choices", ErrUpstream)
	}
	return res.Choices[0].Message.Content, nil
}
