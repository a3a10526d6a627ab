package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/wikidocu"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	result, err := deps.Scanner.Scan(deps.Ctx, c.Units, c.Question)
	if err != nil {
		printError(deps, err)
		return err
	}

	for _, f := range result.Failures {
		fmt.Fprintf(deps.Stderr, "skipped %s: %s\n", f.Unit.Origin, wikidocu.ErrorMessage(f.Err))
	}

	if len(result.Citations) == 0 {
		fmt.Fprintln(deps.Stdout, "No relevant evidence found.")
	} else {
		fmt.Fprint(deps.Stdout, result.Evidence)
		if !strings.HasSuffix(result.Evidence, "\n") {
			fmt.Fprintln(deps.Stdout)
		}
	}

	if deps.TokenCounter == nil {
		return nil
	}
	stats := fmt.Sprintf("units: %d, skipped: %d, citations: %d",
		len(result.Units), len(result.Failures), len(result.Citations))
	if result.Evidence != "" {
		tokens, err := deps.TokenCounter.CountTokens(deps.Ctx, result.Evidence)
		if err != nil {
			return fmt.Errorf("failed to count tokens: %w", err)
		}
		stats += fmt.Sprintf(", evidence: %s (%s)", FormatTokens(tokens), FormatBytes(len(result.Evidence)))
	}
	fmt.Fprintln(deps.Stderr, stats)
	return nil
}
