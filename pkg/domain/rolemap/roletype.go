package rolemap

// RoleType is a canonical role from the workspace catalog, read-only to
// this subsystem. Aliases are alternative spellings that count as exact
// matches for the matcher.
type RoleType struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Category string   `yaml:"category" json:"category"`
	IsActive bool     `yaml:"isActive" json:"isActive"`
	Aliases  []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// MappingSource records how a job-title mapping came to exist.
type MappingSource string

const (
	SourceManual        MappingSource = "manual"
	SourceAISuggested   MappingSource = "ai-suggested"
	SourceImportDefault MappingSource = "import-default"
)

// Mapping assigns a free-text job title to a canonical role type.
// Confidence is advisory metadata: it is never enforced as a gate except
// at the caller-chosen threshold during batch auto-mapping.
type Mapping struct {
	ID         string        `yaml:"id" json:"id"`
	JobTitle   string        `yaml:"jobTitle" json:"jobTitle"`
	RoleTypeID string        `yaml:"roleTypeId" json:"roleTypeId"`
	Confidence float64       `yaml:"confidence" json:"confidence"`
	Source     MappingSource `yaml:"mappingSource" json:"mappingSource"`
	Notes      string        `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Suggestion is an ephemeral scored candidate; it is never persisted.
type Suggestion struct {
	RoleTypeID   string  `json:"roleTypeId"`
	RoleTypeName string  `json:"roleTypeName"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}
