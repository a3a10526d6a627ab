package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/wikidocu"
	main "github.com/fwojciec/wikidocu/cmd/wikidocu"
	"github.com/fwojciec/wikidocu/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists threads", func(t *testing.T) {
		t.Parallel()

		lister := &mock.ThreadLister{
			ListThreadsFn: func(_ context.Context, limit, offset int) ([]*wikidocu.ThreadSummary, error) {
				assert.Equal(t, 20, limit)
				assert.Equal(t, 5, offset)
				return []*wikidocu.ThreadSummary{
					{ID: "t-1", Turns: 3, LastQuestion: "How does\nretention work?", UpdatedAt: time.Now()},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Lister: lister}

		err := (&main.HistoryCmd{Limit: 20, Offset: 5}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "t-1")
		assert.Contains(t, stdout.String(), "3 turns")
		assert.Contains(t, stdout.String(), "How does retention work?")
	})

	t.Run("says when there are no threads", func(t *testing.T) {
		t.Parallel()

		lister := &mock.ThreadLister{
			ListThreadsFn: func(context.Context, int, int) ([]*wikidocu.ThreadSummary, error) {
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Lister: lister}

		require.NoError(t, (&main.HistoryCmd{Limit: 20}).Run(deps))
		assert.Contains(t, stdout.String(), "No threads found")
	})

	t.Run("shows the turns of one thread", func(t *testing.T) {
		t.Parallel()

		threads := &mock.ThreadStore{
			FindThreadByIDFn: func(_ context.Context, id string) (*wikidocu.Thread, error) {
				require.Equal(t, "t-1", id)
				thread := wikidocu.NewThread(id)
				thread.Append(&wikidocu.Turn{Question: "hello", Route: wikidocu.RouteDirectChat, Answer: "Hi there."})
				thread.Append(researchTurn())
				return thread, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Threads: threads}

		err := (&main.HistoryCmd{Thread: "t-1"}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "## Turn 1 (direct_chat)")
		assert.Contains(t, out, "Q: hello")
		assert.Contains(t, out, "## Turn 2 (file_research)")
		assert.Contains(t, out, "Search: 问题:What is X?")
		assert.Contains(t, out, "1 citations")
	})

	t.Run("reports an unknown thread", func(t *testing.T) {
		t.Parallel()

		threads := &mock.ThreadStore{
			FindThreadByIDFn: func(context.Context, string) (*wikidocu.Thread, error) {
				return nil, wikidocu.Errorf(wikidocu.ENOTFOUND, "thread not found")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Threads: threads}

		err := (&main.HistoryCmd{Thread: "nope"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, wikidocu.ENOTFOUND, wikidocu.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: thread not found")
	})
}
