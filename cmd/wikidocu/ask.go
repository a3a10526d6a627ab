package main

import "fmt"

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	threadID := c.Thread
	if threadID == "" {
		threadID = deps.NewID()
	}

	turn, err := deps.Engine.Turn(deps.Ctx, threadID, c.Question)
	if err != nil {
		printError(deps, err)
		return err
	}

	if err := printTurn(deps, turn); err != nil {
		return err
	}

	if c.Thread == "" {
		fmt.Fprintf(deps.Stderr, "thread: %s\n", threadID)
	}
	return nil
}
