// Package analysis turns a data sample into a natural-language assessment
// through a chat-completion model.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Mode selects the prompt.
type Mode string

// Modes.
const (
	ModeGPS        Mode = "gps"
	ModeCapability Mode = "capability"
	ModeRecovery   Mode = "recovery"
	ModeInjury     Mode = "injury"
)

var (
	ErrUnknownMode = errors.New("unknown analysis mode")
	ErrEmptySample = errors.New("empty analysis sample")
	ErrEmptyAnswer = errors.New("model returned no answer")
)

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeGPS, ModeCapability, ModeRecovery, ModeInjury:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer runs a chat completion.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Memo caches answers by request key.
type Memo interface {
	GetOrLoad(ctx context.Context, key string, load func(context.Context) (string, error)) (string, error)
}

// Request is one analysis ask. Sample is a JSON array of records.
type Request struct {
	Mode     Mode   `json:"mode"`
	Category string `json:"category,omitempty"`
	Since    string `json:"since,omitempty"`
	Sample   string `json:"sample"`
}

// Key identifies equal requests.
func (r Request) Key() string {
	h := sha256.New()
	for _, part := range []string{string(r.Mode), r.Category, r.Since, r.Sample} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Analyzer builds prompts and asks the model.
type Analyzer struct {
	completer Completer
	memo      Memo
	club      string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMemo memoizes answers.
func WithMemo(m Memo) Option {
	return func(a *Analyzer) { a.memo = m }
}

// WithClub names the club in prompts.
func WithClub(club string) Option {
	return func(a *Analyzer) {
		if club != "" {
			a.club = club
		}
	}
}

// New returns an Analyzer on c.
func New(c Completer, opts ...Option) *Analyzer {
	a := &Analyzer{completer: c, club: "Chelsea FC"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the model's assessment of req.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (string, error) {
	if _, err := ParseMode(string(req.Mode)); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Sample) == "" {
		return "", ErrEmptySample
	}
	load := func(ctx context.Context) (string, error) {
		answer, err := a.completer.Complete(ctx, a.Messages(req))
		if err != nil {
			return "", fmt.Errorf("analysis %s: %w", req.Mode, err)
		}
		if strings.TrimSpace(answer) == "" {
			return "", ErrEmptyAnswer
		}
		return answer, nil
	}
	if a.memo == nil {
		return load(ctx)
	}
	return a.memo.GetOrLoad(ctx, req.Key(), load)
}
