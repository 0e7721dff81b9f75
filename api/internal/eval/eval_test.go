package eval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ielts-bot/api/internal/quota"
)

// genStub fails the first failN calls, then returns text.
type genStub struct {
	failN int
	text  string
	calls int
}

func (g *genStub) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.calls <= g.failN {
		return "", errors.New("transient upstream error")
	}
	return g.text, nil
}

func newTestEvaluator(gen Generator) (*Evaluator, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := New(gen, zap.New(core))
	e.RetryDelay = time.Millisecond
	return e, logs
}

func TestEvaluateRetries(t *testing.T) {
	t.Run("two failures then success", func(t *testing.T) {
		gen := &genStub{failN: 2, text: "Band 7.0 overall"}
		e, logs := newTestEvaluator(gen)

		got, err := e.Evaluate(context.Background(), quota.Task1, "Describe a chart", "The chart shows...")
		require.NoError(t, err)
		assert.Equal(t, "Band 7.0 overall", got)
		assert.Equal(t, 3, gen.calls)
		assert.Equal(t, 2, logs.FilterMessage("evaluation attempt failed").Len())
	})

	t.Run("exhaustion returns the apology", func(t *testing.T) {
		gen := &genStub{failN: 100}
		e, _ := newTestEvaluator(gen)

		got, err := e.Evaluate(context.Background(), quota.Task2, "q", "a")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, Apology, got)
		assert.Equal(t, 3, gen.calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		gen := &genStub{failN: 100}
		e, _ := newTestEvaluator(gen)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got, err := e.Evaluate(ctx, quota.Task1, "q", "a")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, Apology, got)
		assert.Equal(t, 1, gen.calls)
	})
}

func TestEvaluateTruncation(t *testing.T) {
	t.Run("ascii", func(t *testing.T) {
		gen := &genStub{text: strings.Repeat("x", 5000)}
		e, _ := newTestEvaluator(gen)

		got, err := e.Evaluate(context.Background(), quota.Task1, "q", "a")
		require.NoError(t, err)
		assert.Len(t, got, 4000)
	})

	t.Run("never cuts mid-rune", func(t *testing.T) {
		// "é" spans bytes 3999-4000, so a naive byte slice at 4000 would
		// split it and produce invalid UTF-8.
		gen := &genStub{text: strings.Repeat("a", 3999) + "é" + strings.Repeat("b", 100)}
		e, _ := newTestEvaluator(gen)

		got, err := e.Evaluate(context.Background(), quota.Task1, "q", "a")
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("a", 3999), got)
	})

	t.Run("short output passes through untouched", func(t *testing.T) {
		gen := &genStub{text: "Band 6.5 — coherent but repetitive."}
		e, _ := newTestEvaluator(gen)

		got, err := e.Evaluate(context.Background(), quota.Task2, "q", "a")
		require.NoError(t, err)
		assert.Equal(t, gen.text, got)
	})
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(quota.Task2, "Some people think...", "I agree because...")
	assert.Contains(t, p, "Task type: Task 2")
	assert.Contains(t, p, "Question: Some people think...")
	assert.Contains(t, p, "Answer: I agree because...")
	assert.Contains(t, p, "Task Achievement")
	assert.Contains(t, p, "Lexical Resource")

	// Image questions arrive as empty or sentinel text; empty gets the placeholder.
	p = buildPrompt(quota.Task1, "   ", "essay text")
	assert.Contains(t, p, "Question: [Image Attached]")
}
