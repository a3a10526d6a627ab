package main

import "fmt"

// Run executes the forget command.
func (c *ForgetCmd) Run(deps *Dependencies) error {
	if err := deps.Threads.DeleteThread(deps.Ctx, c.Thread); err != nil {
		printError(deps, err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Deleted thread %s\n", c.Thread)
	return nil
}
