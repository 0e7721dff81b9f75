package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extractorFunc func(ctx context.Context, image []byte) (string, error)

func (f extractorFunc) Extract(ctx context.Context, image []byte) (string, error) {
	return f(ctx, image)
}

func TestResolveText(t *testing.T) {
	r := New(nil)

	t.Run("trims and returns text unchanged", func(t *testing.T) {
		got, err := r.Resolve(context.Background(), TextInput("  The chart shows...  "))
		require.NoError(t, err)
		assert.Equal(t, "The chart shows...", got)
	})

	t.Run("whitespace-only is empty", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), TextInput("   \n\t "))
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("blank is empty", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), TextInput(""))
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestResolveImage(t *testing.T) {
	t.Run("returns extracted text", func(t *testing.T) {
		r := New(extractorFunc(func(_ context.Context, img []byte) (string, error) {
			assert.Equal(t, []byte{0xFF, 0xD8}, img)
			return " handwritten essay \n", nil
		}))
		got, err := r.Resolve(context.Background(), ImageInput([]byte{0xFF, 0xD8}))
		require.NoError(t, err)
		assert.Equal(t, "handwritten essay", got)
	})

	t.Run("extraction failure is empty", func(t *testing.T) {
		r := New(extractorFunc(func(context.Context, []byte) (string, error) {
			return "", errors.New("ocr backend down")
		}))
		_, err := r.Resolve(context.Background(), ImageInput([]byte{1}))
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("blank extraction is empty", func(t *testing.T) {
		r := New(extractorFunc(func(context.Context, []byte) (string, error) {
			return "  \n ", nil
		}))
		_, err := r.Resolve(context.Background(), ImageInput([]byte{1}))
		assert.ErrorIs(t, err, ErrEmpty)
	})
}
