package console

import (
	"fmt"
	"io"

	"locator-catalog/internal/entity"
)

func printReport(w io.Writer, r *entity.ComparisonReport) {
	fmt.Fprintf(w, "Baseline v%s -> current v%s\n", r.BaselineVersion, r.CurrentVersion)

	if r.BreakingChanges > 0 {
		fmt.Fprintf(w, "!! %d BREAKING CHANGES, risk %s\n", r.BreakingChanges, r.RiskLevel)
	} else {
		fmt.Fprintf(w, "No breaking changes, risk %s\n", r.RiskLevel)
	}

	if len(r.Removed) > 0 {
		fmt.Fprintf(w, "\nRemoved (%d):\n", len(r.Removed))
		for _, e := range r.Removed {
			fmt.Fprintf(w, "  - %s  %s\n", e.Name, e.Selector)
		}
	}

	if len(r.Changed) > 0 {
		fmt.Fprintf(w, "\nChanged (%d):\n", len(r.Changed))
		for _, e := range r.Changed {
			fmt.Fprintf(w, "  ~ %s\n      old: %s\n      new: %s\n", e.Name, e.OldSelector, e.NewSelector)
		}
	}

	if len(r.Added) > 0 {
		fmt.Fprintf(w, "\nAdded (%d):\n", len(r.Added))
		for _, e := range r.Added {
			fmt.Fprintf(w, "  + %s  %s  [%s]\n", e.Name, e.Selector, e.Source)
		}
	}

	fmt.Fprintf(w, "\nUnchanged: %d\n", len(r.Unchanged))
}
