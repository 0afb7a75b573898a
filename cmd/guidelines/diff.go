package main

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kober-systems/guidelines/pkg/source"
)

// printFixDiff prints a unified diff for every file the fix engine
// created or rewrote.
func printFixDiff(before, after source.FileSet) error {
	for _, path := range after.Paths() {
		old, existed := before[path]
		if existed && old == after[path] {
			continue
		}

		fromFile := path
		if !existed {
			fromFile = "/dev/null"
		}

		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(old),
			B:        difflib.SplitLines(after[path]),
			FromFile: fromFile,
			ToFile:   path,
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("failed to diff %s: %w", path, err)
		}
		fmt.Print(diff)
	}
	return nil
}
