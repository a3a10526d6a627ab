package main

import (
	"fmt"

	"github.com/fwojciec/wikidocu/fs"
)

// Run executes the tree command.
func (c *TreeCmd) Run(deps *Dependencies) error {
	root, err := fs.BuildTree(c.Path, fs.TreeOptions{
		IncludeHidden: c.Hidden,
		Extensions:    c.Ext,
	})
	if err != nil {
		printError(deps, err)
		return err
	}
	fmt.Fprintln(deps.Stdout, root.Render())
	return nil
}
