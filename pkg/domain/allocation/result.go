package allocation

import "github.com/planport/planport/pkg/domain/imports"

// EpicType partitions work into recurring operational buckets and
// project-backed change work.
type EpicType string

const (
	EpicTypeRunWork    EpicType = "Run Work"
	EpicTypeChangeWork EpicType = "Change Work"
)

// Result is the externally emitted allocation shape, terminal once
// accepted into the batch to import.
type Result struct {
	TeamName    string   `json:"teamName"`
	EpicName    string   `json:"epicName"`
	EpicType    EpicType `json:"epicType"`
	Sprint      string   `json:"sprint"`
	Percentage  int      `json:"percentage"`
	StoryPoints float64  `json:"storyPoints"`
}

// DefaultRunWorkLabels are the epic names recognized as run work out of
// the box. Classification is an exact case-insensitive match against this
// list, never fuzzy.
var DefaultRunWorkLabels = []string{
	"Critical Run",
	"Production Support",
	"Bug Fixes",
	"Business as Usual",
}

// RunWorkClassifier classifies epic names against a keyword list.
type RunWorkClassifier struct {
	labels map[string]bool
}

// NewRunWorkClassifier builds a classifier; nil labels use the defaults.
func NewRunWorkClassifier(labels []string) *RunWorkClassifier {
	if labels == nil {
		labels = DefaultRunWorkLabels
	}
	c := &RunWorkClassifier{labels: make(map[string]bool, len(labels))}
	for _, l := range labels {
		c.labels[imports.FoldName(l)] = true
	}
	return c
}

// Classify returns the epic type for an epic name.
func (c *RunWorkClassifier) Classify(epicName string) EpicType {
	if c.labels[imports.FoldName(epicName)] {
		return EpicTypeRunWork
	}
	return EpicTypeChangeWork
}

// CalculateAllocationPercentages projects aggregates into emitted results.
// This is a shape transform only: percentages were fixed by the
// aggregator, the classifier just decorates each row with its epic type.
func CalculateAllocationPercentages(aggregates []TeamSprintAggregate, classifier *RunWorkClassifier) []Result {
	if classifier == nil {
		classifier = NewRunWorkClassifier(nil)
	}
	out := make([]Result, 0, len(aggregates))
	for _, a := range aggregates {
		out = append(out, Result{
			TeamName:    a.TeamName,
			EpicName:    a.EpicName,
			EpicType:    classifier.Classify(a.EpicName),
			Sprint:      a.SprintLabel,
			Percentage:  a.Percentage,
			StoryPoints: a.TotalPoints,
		})
	}
	return out
}
