package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/wikidocu"
	"github.com/fwojciec/wikidocu/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter(gemini.DefaultModel)
	require.NoError(t, err)
	assert.Equal(t, gemini.DefaultModel, tc.Model())

	ctx := context.Background()

	t.Run("empty text is zero tokens", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(ctx, "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("more evidence means more tokens", func(t *testing.T) {
		t.Parallel()

		short, err := tc.CountTokens(ctx, "Source [1]")
		require.NoError(t, err)
		long, err := tc.CountTokens(ctx, "Source [1]: guide.md, lines 3 to 9. The configuration loader reads YAML and applies flags last.")
		require.NoError(t, err)

		assert.Positive(t, short)
		assert.Greater(t, long, short)
	})

	t.Run("request count includes the system instruction", func(t *testing.T) {
		t.Parallel()

		req := &wikidocu.CompletionRequest{
			Messages: []wikidocu.Message{{Role: wikidocu.RoleUser, Content: "What is a thread?"}},
		}
		bare, err := tc.CountRequest(ctx, req)
		require.NoError(t, err)

		req.System = "You are a content analysis assistant. Answer using the evidence provided."
		withSystem, err := tc.CountRequest(ctx, req)
		require.NoError(t, err)

		assert.Greater(t, withSystem, bare)
	})

	t.Run("request without messages is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := tc.CountRequest(ctx, &wikidocu.CompletionRequest{System: "x"})

		assert.Equal(t, wikidocu.EINVALID, wikidocu.ErrorCode(err))
	})
}

func TestNewTokenCounter_UnknownModelFallsBack(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter("gemini-unreleased-preview")

	require.NoError(t, err)
	assert.Equal(t, gemini.DefaultModel, tc.Model())
}
