package main

import (
	"fmt"
	"strings"
	"time"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.Thread != "" {
		return c.show(deps)
	}

	threads, err := deps.Lister.ListThreads(deps.Ctx, c.Limit, c.Offset)
	if err != nil {
		printError(deps, err)
		return err
	}
	if len(threads) == 0 {
		fmt.Fprintln(deps.Stdout, "No threads found. Use 'wikidocu ask' or 'wikidocu chat' to start one.")
		return nil
	}
	for _, t := range threads {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d turns  %s\n",
			t.ID, t.UpdatedAt.Local().Format(time.DateTime), t.Turns, truncate(t.LastQuestion, 60))
	}
	return nil
}

func (c *HistoryCmd) show(deps *Dependencies) error {
	thread, err := deps.Threads.FindThreadByID(deps.Ctx, c.Thread)
	if err != nil {
		printError(deps, err)
		return err
	}
	if len(thread.Turns) == 0 {
		fmt.Fprintf(deps.Stdout, "Thread %s has no turns.\n", thread.ID)
		return nil
	}
	for i, turn := range thread.Turns {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "## Turn %d (%s)\n\n", turn.Index+1, turn.Route)
		fmt.Fprintf(deps.Stdout, "Q: %s\n", turn.Question)
		if turn.SearchQuery != "" {
			fmt.Fprintf(deps.Stdout, "Search: %s\n", turn.SearchQuery)
		}
		fmt.Fprintf(deps.Stdout, "\n%s\n", strings.TrimSpace(turn.Answer))
		if n := len(turn.Citations()); n > 0 {
			fmt.Fprintf(deps.Stdout, "\n%d citations\n", n)
		}
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
