package graphdoc

import (
	"fmt"
	"strconv"
)

// Issue is one structural problem found by [Document.Validate].
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string { return i.Path + ": " + i.Message }

// Validate checks the document invariants that can be verified without a
// type universe: unique non-empty node ids, edge endpoints naming existing
// nodes, list indices below the recorded port count, drive values that are
// import indices, and one import list per type.
//
// Issues are informational. The importer skips the offending items on its
// own, so a document with issues still imports everything that is valid.
func (d *Document) Validate() []Issue {
	var issues []Issue
	add := func(path, format string, args ...any) {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	counts := make(map[string]map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if n.ID == "" {
			add(path, "empty node id")
			continue
		}
		if _, dup := counts[n.ID]; dup {
			add(path, "duplicate node id %q", n.ID)
			continue
		}
		if n.Type.IsVoid() {
			add(path+".type", "missing type name")
		}
		ports := make(map[string]int, len(n.SerializedPorts))
		for j, p := range n.SerializedPorts {
			if p.Count < 0 {
				add(fmt.Sprintf("%s.serializedPorts[%d]", path, j), "negative count %d", p.Count)
			}
			ports[p.Name] = p.Count
		}
		counts[n.ID] = ports
	}

	for i, n := range d.Nodes {
		for j, g := range n.GlobalRefs {
			if g.Name == "" {
				add(fmt.Sprintf("nodes[%d].globalRefs[%d]", i, j), "empty name")
			}
			if g.Drive {
				if _, err := strconv.Atoi(g.Value); err != nil {
					add(fmt.Sprintf("nodes[%d].globalRefs[%d]", i, j), "drive value %q is not an import index", g.Value)
				}
			}
		}
	}

	check := func(kind string, conns []Connection) {
		for i, c := range conns {
			path := fmt.Sprintf("connections.%s[%d]", kind, i)
			from, ok := counts[c.FromID]
			if !ok {
				add(path, "unknown source node %q", c.FromID)
			} else {
				checkIndex(add, path+".from", from, c.FromName, c.FromIndex)
			}
			to, ok := counts[c.ToID]
			if !ok {
				add(path, "unknown target node %q", c.ToID)
			} else {
				checkIndex(add, path+".to", to, c.ToName, c.ToIndex)
			}
		}
	}
	check("inputOutputConnections", d.Connections.Data)
	check("impulseOperationConnections", d.Connections.Control)
	check("referenceConnections", d.Connections.Reference)

	seen := make(map[string]bool, len(d.ImportNames))
	for i, in := range d.ImportNames {
		if in.Type.IsVoid() {
			add(fmt.Sprintf("importNames[%d]", i), "missing type name")
			continue
		}
		key := in.Type.String()
		if seen[key] {
			add(fmt.Sprintf("importNames[%d]", i), "duplicate import list for %s", key)
		}
		seen[key] = true
	}
	return issues
}

func checkIndex(add func(string, string, ...any), path string, ports map[string]int, name string, index int) {
	if index < 0 {
		return
	}
	count, ok := ports[name]
	if !ok {
		add(path, "index %d on %q, which is not a list port", index, name)
		return
	}
	if index >= count {
		add(path, "index %d out of range for %q (count %d)", index, name, count)
	}
}

// ImportCount returns the number of import labels recorded for a type name
// in the form produced by [typeref.Descriptor.String].
func (d *Document) ImportCount(typeName string) int {
	for _, in := range d.ImportNames {
		if in.Type.String() == typeName {
			return len(in.Names)
		}
	}
	return 0
}
