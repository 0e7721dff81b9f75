package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ielts-bot/api/internal/quota"
)

const (
	// maxResultLen keeps replies under Telegram's message size limit.
	maxResultLen = 4000

	maxAttempts = 3
	retryDelay  = 2 * time.Second

	// Apology is what the user sees when every attempt failed.
	Apology = "❌ Gemini API error after retries. Please try again later."
)

// ErrUnavailable signals retry exhaustion. The returned text is still the
// user-facing Apology; callers must not consume quota when they see this.
var ErrUnavailable = errors.New("eval: service unavailable after retries")

// Generator is the external text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Evaluator struct {
	LLM Generator
	Log *zap.Logger

	// RetryDelay between failed attempts; zero means the default 2s.
	RetryDelay time.Duration
}

func New(llm Generator, log *zap.Logger) *Evaluator {
	return &Evaluator{LLM: llm, Log: log, RetryDelay: retryDelay}
}

// Evaluate scores the answer against the fixed IELTS rubric. On success the
// returned text is truncated to the message size limit and err is nil. After
// exhausting all attempts it returns the Apology text and ErrUnavailable.
func (e *Evaluator) Evaluate(ctx context.Context, task quota.Task, question, answer string) (string, error) {
	prompt := buildPrompt(task, question, answer)
	delay := e.RetryDelay
	if delay <= 0 {
		delay = retryDelay
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := e.LLM.Generate(ctx, prompt)
		if err == nil {
			return truncate(text, maxResultLen), nil
		}
		e.Log.Warn("evaluation attempt failed",
			zap.Int("attempt", attempt),
			zap.String("task", task.Label()),
			zap.Error(err),
		)
		if attempt < maxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return Apology, ErrUnavailable
			}
		}
	}
	return Apology, ErrUnavailable
}

// truncate cuts text to at most n bytes without splitting a rune; a cut that
// lands mid-rune would hand Telegram invalid UTF-8.
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func buildPrompt(task quota.Task, question, answer string) string {
	if strings.TrimSpace(question) == "" {
		question = "[Image Attached]"
	}
	return fmt.Sprintf(`You are an IELTS Academic Writing evaluator. You are responding through a Telegram bot.
Keep your message under 4000 characters to avoid errors.
Use Markdown formatting only where necessary and avoid long bullet lists.

Task type: %s
Question: %s
Answer: %s

Score and comment each:
- Task Achievement
- Coherence and Cohesion
- Lexical Resource
- Grammar
`, task.Label(), question, answer)
}
