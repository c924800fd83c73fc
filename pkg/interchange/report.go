package interchange

import (
	"fmt"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/graphdoc"
)

// Stage names the import phase a diagnostic was raised in.
type Stage string

const (
	StageImports   Stage = "imports"
	StageNode      Stage = "node"
	StagePorts     Stage = "ports"
	StageGlobalRef Stage = "globalRef"
	StageExtra     Stage = "extra"
	StageComment   Stage = "comment"
	StageControl   Stage = "control"
	StageData      Stage = "data"
	StageReference Stage = "reference"
)

// Diagnostic is one skipped item.
type Diagnostic struct {
	Stage  Stage
	NodeID string
	// Edge is set for wiring diagnostics.
	Edge *graphdoc.Connection
	Err  error
}

// Code returns the error code of the diagnostic.
func (d Diagnostic) Code() errors.Code { return errors.GetCode(d.Err) }

func (d Diagnostic) String() string {
	switch {
	case d.Edge != nil:
		return fmt.Sprintf("%s %s: %v", d.Stage, edgeString(*d.Edge), d.Err)
	case d.NodeID != "":
		return fmt.Sprintf("%s %s: %v", d.Stage, d.NodeID, d.Err)
	}
	return fmt.Sprintf("%s: %v", d.Stage, d.Err)
}

func edgeString(c graphdoc.Connection) string {
	end := func(id, name string, index int) string {
		if index == graphdoc.NoIndex {
			return fmt.Sprintf("%s.%s", id, name)
		}
		return fmt.Sprintf("%s.%s[%d]", id, name, index)
	}
	return end(c.FromID, c.FromName, c.FromIndex) + "->" + end(c.ToID, c.ToName, c.ToIndex)
}

// Report is the outcome of one [Import].
type Report struct {
	// Nodes maps document node ids to the nodes built for them.
	Nodes map[string]*flux.Node
	// Containers are the slots created under the destination.
	Containers []*flux.Slot
	// Adapters are cast nodes inserted while wiring data edges.
	Adapters []*flux.Node

	// NodesTotal and EdgesTotal count the document's nodes and edges.
	NodesTotal int
	EdgesTotal int
	// EdgesWired counts the edges connected.
	EdgesWired int

	Diagnostics []Diagnostic
}

// OK reports whether nothing was skipped.
func (r *Report) OK() bool { return len(r.Diagnostics) == 0 }

// ByStage returns the diagnostics raised in stage s.
func (r *Report) ByStage(s Stage) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Stage == s {
			out = append(out, d)
		}
	}
	return out
}

// Summary is a one-line description of the import.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d/%d nodes, %d/%d connections, %d adapters, %d diagnostics",
		len(r.Nodes), r.NodesTotal, r.EdgesWired, r.EdgesTotal, len(r.Adapters), len(r.Diagnostics))
}

// ReportRecord is the JSON form of a [Report].
type ReportRecord struct {
	Summary     string             `json:"summary"`
	Nodes       int                `json:"nodes"`
	NodesTotal  int                `json:"nodesTotal"`
	EdgesWired  int                `json:"edgesWired"`
	EdgesTotal  int                `json:"edgesTotal"`
	Adapters    int                `json:"adapters"`
	Diagnostics []DiagnosticRecord `json:"diagnostics"`
}

// DiagnosticRecord is the JSON form of a [Diagnostic].
type DiagnosticRecord struct {
	Stage   Stage       `json:"stage"`
	Code    errors.Code `json:"code"`
	NodeID  string      `json:"nodeId,omitempty"`
	Edge    string      `json:"edge,omitempty"`
	Message string      `json:"message"`
}

// Record returns the JSON form of r.
func (r *Report) Record() ReportRecord {
	rec := ReportRecord{
		Summary:     r.Summary(),
		Nodes:       len(r.Nodes),
		NodesTotal:  r.NodesTotal,
		EdgesWired:  r.EdgesWired,
		EdgesTotal:  r.EdgesTotal,
		Adapters:    len(r.Adapters),
		Diagnostics: make([]DiagnosticRecord, 0, len(r.Diagnostics)),
	}
	for _, d := range r.Diagnostics {
		dr := DiagnosticRecord{Stage: d.Stage, Code: d.Code(), NodeID: d.NodeID}
		if d.Edge != nil {
			dr.Edge = edgeString(*d.Edge)
		}
		if d.Err != nil {
			dr.Message = errors.UserMessage(d.Err)
		}
		rec.Diagnostics = append(rec.Diagnostics, dr)
	}
	return rec
}
