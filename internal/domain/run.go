package domain

import "time"

// ItemStatus is the outcome of one sweep item.
type ItemStatus string

const (
	ItemSkipped    ItemStatus = "skipped"
	ItemSolved     ItemStatus = "solved"
	ItemMeshFailed ItemStatus = "mesh_failed"
	ItemFailed     ItemStatus = "failed"
)

// Stage is a step of the per-item pipeline, used for progress reporting.
type Stage string

const (
	StageDocument Stage = "document"
	StageMesh     Stage = "mesh"
	StageSolve    Stage = "solve"
	StageSave     Stage = "save"
)

// StageTimings are wall-clock durations of one item.
type StageTimings struct {
	Mesh  time.Duration `json:"mesh"`
	Solve time.Duration `json:"solve"`
	Total time.Duration `json:"total"`
}

// ResultSummary is what the solver output says about the final state.
type ResultSummary struct {
	FinalTime      float64  `json:"final_time"`
	MaxTemperature float64  `json:"max_temperature"`
	MinTemperature float64  `json:"min_temperature"`
	NodeCount      int      `json:"node_count"`
	Files          []string `json:"files,omitempty"`
}

// RunError is a structured, serializable error attached to an item.
type RunError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewRunError classifies err for persistence.
func NewRunError(err error) *RunError {
	if err == nil {
		return nil
	}
	kind := KindExecution
	for _, k := range []ErrorKind{KindMesh, KindSolver, KindNotFound, KindInvalidConfig, KindCanceled} {
		if IsKind(err, k) {
			kind = k
			break
		}
	}
	return &RunError{Kind: kind, Message: err.Error()}
}

// ItemResult is the record of one processed sweep item.
type ItemResult struct {
	Name       string         `json:"name"`
	Item       SweepItem      `json:"item"`
	Status     ItemStatus     `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	MeshReused bool           `json:"mesh_reused"`
	MeshPath   string         `json:"mesh_path,omitempty"`
	Document   string         `json:"document,omitempty"`
	Timings    StageTimings   `json:"timings"`
	Precheck   string         `json:"precheck,omitempty"`
	Result     *ResultSummary `json:"result,omitempty"`
	Error      *RunError      `json:"error,omitempty"`
}

// SweepRun is the persisted artifact of one thermosweep run.
type SweepRun struct {
	ID         string       `json:"id,omitempty"`
	ConfigPath string       `json:"config_path"`
	StartedAt  time.Time    `json:"started_at"`
	EndedAt    time.Time    `json:"ended_at"`
	Stopped    string       `json:"stopped,omitempty"`
	Items      []ItemResult `json:"items"`
}

// Count returns how many items ended with the given status.
func (r SweepRun) Count(s ItemStatus) int {
	n := 0
	for _, it := range r.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}

// Duration is the wall-clock length of the run, zero when unfinished.
func (r SweepRun) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// RunRef is a lightweight listing entry of a stored run.
type RunRef struct {
	ID         string    `json:"id"`
	File       string    `json:"file"`
	ConfigPath string    `json:"config_path"`
	StartedAt  time.Time `json:"started_at"`
	Items      int       `json:"items"`
	Solved     int       `json:"solved"`
}

// ItemPlan describes what a run would do for an item, given the cache.
type ItemPlan struct {
	Item           SweepItem `json:"item"`
	Name           string    `json:"name"`
	GeometryPath   string    `json:"geometry_path"`
	GeometryExists bool      `json:"geometry_exists"`
	DocumentExists bool      `json:"document_exists"`
	MeshExists     bool      `json:"mesh_exists"`
	WillSkip       bool      `json:"will_skip"`
	WillReuseMesh  bool      `json:"will_reuse_mesh"`
}
