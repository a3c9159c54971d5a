package output

import "github.com/leapstack-labs/modelforest/internal/models"

// ForestOutput is the JSON shape of the compose command.
type ForestOutput struct {
	Source   string            `json:"source"`
	Models   int               `json:"models"`
	TopLevel []string          `json:"top_level"`
	Forest   []models.TreeNode `json:"forest"`
}

// RootsEntry lists the root ancestors of one model.
type RootsEntry struct {
	Index      string   `json:"index"`
	Placement  string   `json:"placement"`
	Containers []string `json:"containers,omitempty"`
	Roots      []string `json:"roots"`
}

// DAGOutput is the JSON shape of the dag command.
type DAGOutput struct {
	Levels      []DAGLevel `json:"levels"`
	TotalModels int        `json:"total_models"`
	TotalEdges  int        `json:"total_edges"`
}

// DAGLevel groups models that can be defined once lower levels exist.
type DAGLevel struct {
	Level  int       `json:"level"`
	Models []DAGNode `json:"models"`
}

// DAGNode is one model of a DAGLevel.
type DAGNode struct {
	Index    string   `json:"index"`
	Contains []string `json:"contains,omitempty"`
	UsedBy   []string `json:"used_by,omitempty"`
}

// CheckResult is the outcome of checking one document.
type CheckResult struct {
	Source string   `json:"source"`
	OK     bool     `json:"ok"`
	Models int      `json:"models"`
	Errors []string `json:"errors,omitempty"`
}
