package allocation_test

import (
	"reflect"
	"testing"

	"github.com/planport/planport/pkg/domain/allocation"
	"github.com/planport/planport/pkg/domain/imports"
)

func TestAggregateTeamSprintData_Shares(t *testing.T) {
	epics := []imports.EpicRecord{
		{EpicName: "Epic A", ProjectName: "Proj A", Effort: 10, Team: "T1"},
		{EpicName: "Epic B", Effort: 20, Team: "T1"},
	}
	stories := []imports.StoryRecord{
		{EpicName: "Epic A", SprintLabel: "Sprint 1", StoryPoints: 5, TeamName: "T1"},
		{EpicName: "Epic B", SprintLabel: "Sprint 1", StoryPoints: 15, TeamName: "T1"},
	}

	aggregates, issues := allocation.AggregateTeamSprintData(epics, stories)
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues.Messages())
	}
	if len(aggregates) != 2 {
		t.Fatalf("expected 2 aggregates, got %d", len(aggregates))
	}

	byEpic := map[string]allocation.TeamSprintAggregate{}
	for _, a := range aggregates {
		byEpic[a.EpicName] = a
	}
	if byEpic["Epic A"].Percentage != 25 {
		t.Errorf("Epic A: expected 25%%, got %d%%", byEpic["Epic A"].Percentage)
	}
	if byEpic["Epic B"].Percentage != 75 {
		t.Errorf("Epic B: expected 75%%, got %d%%", byEpic["Epic B"].Percentage)
	}
	if byEpic["Epic A"].ProjectName != "Proj A" {
		t.Errorf("project context not inherited from parent epic: %q", byEpic["Epic A"].ProjectName)
	}
}

func TestAggregateTeamSprintData_TeamInheritedFromEpic(t *testing.T) {
	epics := []imports.EpicRecord{
		{EpicName: "Epic A", Effort: 10, Team: "Team One"},
	}
	stories := []imports.StoryRecord{
		{EpicName: "Epic A", SprintLabel: "Sprint 1", StoryPoints: 8},
	}

	aggregates, _ := allocation.AggregateTeamSprintData(epics, stories)
	if len(aggregates) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggregates))
	}
	if aggregates[0].TeamName != "Team One" {
		t.Errorf("team should come from the parent epic, got %q", aggregates[0].TeamName)
	}
}

func TestAggregateTeamSprintData_ZeroPointGroupExcluded(t *testing.T) {
	stories := []imports.StoryRecord{
		{EpicName: "Epic A", SprintLabel: "Sprint 1", StoryPoints: 0, TeamName: "T1"},
	}

	aggregates, issues := allocation.AggregateTeamSprintData(nil, stories)
	if len(aggregates) != 0 {
		t.Fatalf("zero-point group must be excluded, got %d aggregates", len(aggregates))
	}
	if len(issues.Warnings()) != 1 {
		t.Fatalf("expected a warning for the empty group, got %v", issues.Messages())
	}
}

func TestAggregateTeamSprintData_SumProperty(t *testing.T) {
	stories := []imports.StoryRecord{
		{EpicName: "E1", SprintLabel: "S1", StoryPoints: 1, TeamName: "T1"},
		{EpicName: "E2", SprintLabel: "S1", StoryPoints: 1, TeamName: "T1"},
		{EpicName: "E3", SprintLabel: "S1", StoryPoints: 1, TeamName: "T1"},
	}

	aggregates, _ := allocation.AggregateTeamSprintData(nil, stories)
	sum := 0
	for _, a := range aggregates {
		sum += a.Percentage
	}
	// Each term is rounded independently, so the total may drift from 100
	// by at most the number of epics.
	if sum < 100-len(aggregates) || sum > 100+len(aggregates) {
		t.Errorf("percentages sum to %d, outside 100±%d", sum, len(aggregates))
	}
}

func TestAggregateTeamSprintData_Idempotent(t *testing.T) {
	epics := []imports.EpicRecord{{EpicName: "Epic A", Effort: 10, Team: "T1"}}
	stories := []imports.StoryRecord{
		{EpicName: "Epic A", SprintLabel: "S1", StoryPoints: 7, TeamName: "T1"},
		{EpicName: "Epic B", SprintLabel: "S1", StoryPoints: 13, TeamName: "T1"},
	}

	first, _ := allocation.AggregateTeamSprintData(epics, stories)
	second, _ := allocation.AggregateTeamSprintData(epics, stories)
	if !reflect.DeepEqual(first, second) {
		t.Error("re-running aggregation on identical input produced different results")
	}
}

func TestAggregateTeamSprintData_StoriesMergePerEpic(t *testing.T) {
	stories := []imports.StoryRecord{
		{EpicName: "Epic A", SprintLabel: "S1", StoryPoints: 3, TeamName: "T1"},
		{EpicName: "Epic A", SprintLabel: "S1", StoryPoints: 7, TeamName: "T1"},
		{EpicName: "Epic B", SprintLabel: "S1", StoryPoints: 10, TeamName: "T1"},
	}

	aggregates, _ := allocation.AggregateTeamSprintData(nil, stories)
	byEpic := map[string]allocation.TeamSprintAggregate{}
	for _, a := range aggregates {
		byEpic[a.EpicName] = a
	}
	if byEpic["Epic A"].TotalPoints != 10 {
		t.Errorf("story points should sum per epic, got %v", byEpic["Epic A"].TotalPoints)
	}
	if byEpic["Epic A"].Percentage != 50 || byEpic["Epic B"].Percentage != 50 {
		t.Errorf("expected a 50/50 split, got %d/%d", byEpic["Epic A"].Percentage, byEpic["Epic B"].Percentage)
	}
}
