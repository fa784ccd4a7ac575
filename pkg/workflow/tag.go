package workflow

import "github.com/streamflow-go/engine/pkg/contract"

// TagOf returns the longest tag among tokens, defaulting to "0" when tokens
// is empty — the hierarchical firing coordinate a TokenProcessor stamps
// onto the output tokens it computes for a firing.
func TagOf(tokens []contract.Token) string {
	outputTag := "0"
	for _, t := range tokens {
		if len(t.Tag) > len(outputTag) {
			outputTag = t.Tag
		}
	}
	return outputTag
}
