package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/wikidocu"
)

// Run executes the chat command. Each non-blank line read from stdin is one
// turn; "exit", "quit" or end of input stops the loop. A failed turn is
// reported and the conversation continues with the thread unchanged.
func (c *ChatCmd) Run(deps *Dependencies) error {
	threadID := c.Thread
	if threadID == "" {
		threadID = deps.NewID()
	}
	fmt.Fprintf(deps.Stderr, "thread: %s\n", threadID)

	scanner := bufio.NewScanner(deps.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(deps.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		turn, err := deps.Engine.Turn(deps.Ctx, threadID, line)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			fmt.Fprintf(deps.Stderr, "error: %s, please retry\n", wikidocu.ErrorMessage(err))
			continue
		}
		if err := printTurn(deps, turn); err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout)
	}
	fmt.Fprintln(deps.Stderr)
	return scanner.Err()
}
