package entity

import "sort"

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ClassifyRisk maps a breaking-change count onto a risk level.
func ClassifyRisk(breakingChanges int) RiskLevel {
	switch {
	case breakingChanges > 5:
		return RiskCritical
	case breakingChanges > 2:
		return RiskHigh
	case breakingChanges > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

type ComparisonReport struct {
	BaselineVersion string           `json:"baseline_version"`
	CurrentVersion  string           `json:"current_version"`
	Changed         []ChangedElement `json:"changed"`
	Added           []AddedElement   `json:"added"`
	Removed         []RemovedElement `json:"removed"`
	Unchanged       []string         `json:"unchanged"`
	BreakingChanges int              `json:"breaking_changes"`
	RiskLevel       RiskLevel        `json:"risk_level"`
}

type ChangedElement struct {
	Name        string `json:"name"`
	OldSelector string `json:"old_selector"`
	NewSelector string `json:"new_selector"`
}

type AddedElement struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
	Source   Source `json:"source"`
}

type RemovedElement struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
}

// Diff classifies every element of baseline and current. Neither document is
// modified. Output slices are sorted by element name.
func Diff(baseline, current *CatalogDocument) *ComparisonReport {
	report := &ComparisonReport{
		BaselineVersion: baseline.Version,
		CurrentVersion:  current.Version,
		Changed:         []ChangedElement{},
		Added:           []AddedElement{},
		Removed:         []RemovedElement{},
		Unchanged:       []string{},
	}

	for _, name := range SortedNames(baseline.Elements) {
		old := baseline.Elements[name]

		cur, ok := current.Elements[name]
		switch {
		case !ok:
			report.Removed = append(report.Removed, RemovedElement{Name: name, Selector: old.Selector})
		case cur.Selector != old.Selector:
			report.Changed = append(report.Changed, ChangedElement{
				Name:        name,
				OldSelector: old.Selector,
				NewSelector: cur.Selector,
			})
		default:
			report.Unchanged = append(report.Unchanged, name)
		}
	}

	for _, name := range SortedNames(current.Elements) {
		if _, ok := baseline.Elements[name]; ok {
			continue
		}

		cur := current.Elements[name]
		report.Added = append(report.Added, AddedElement{Name: name, Selector: cur.Selector, Source: cur.Source})
	}

	report.BreakingChanges = len(report.Changed) + len(report.Removed)
	report.RiskLevel = ClassifyRisk(report.BreakingChanges)

	return report
}

func SortedNames(elements map[string]ElementEntry) []string {
	names := make([]string, 0, len(elements))
	for name := range elements {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
