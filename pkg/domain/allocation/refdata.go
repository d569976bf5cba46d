package allocation

import "github.com/planport/planport/pkg/domain/imports"

// Team is reference data borrowed read-only from the workspace.
type Team struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Epic is reference data borrowed read-only from the workspace.
type Epic struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// TeamDirectory resolves team names with normalized (trimmed, case-folded)
// keys. Matching semantics live here rather than in closures so the
// validator and the confirm step agree on them.
type TeamDirectory struct {
	byName map[string]Team
}

// NewTeamDirectory indexes teams by normalized name. Later duplicates win.
func NewTeamDirectory(teams []Team) *TeamDirectory {
	d := &TeamDirectory{byName: make(map[string]Team, len(teams))}
	for _, t := range teams {
		d.byName[imports.FoldName(t.Name)] = t
	}
	return d
}

// Find resolves a team by name.
func (d *TeamDirectory) Find(name string) (Team, bool) {
	t, ok := d.byName[imports.FoldName(name)]
	return t, ok
}

// EpicDirectory resolves epic names with normalized keys.
type EpicDirectory struct {
	byName map[string]Epic
}

// NewEpicDirectory indexes epics by normalized name.
func NewEpicDirectory(epics []Epic) *EpicDirectory {
	d := &EpicDirectory{byName: make(map[string]Epic, len(epics))}
	for _, e := range epics {
		d.byName[imports.FoldName(e.Name)] = e
	}
	return d
}

// Find resolves an epic by name.
func (d *EpicDirectory) Find(name string) (Epic, bool) {
	e, ok := d.byName[imports.FoldName(name)]
	return e, ok
}
