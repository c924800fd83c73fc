package graphdoc

import (
	"encoding/json"

	"github.com/matzehuels/splice/pkg/typeref"
)

// =============================================================================
// Constants
// =============================================================================

// CurrentVersion is the document version written by this package. Documents
// without a version field are read as version 1.
const CurrentVersion = 1

// SelfPort is the port name meaning "the node itself" rather than one of its
// ports. It appears as fromName of data and control edges whose source or
// target is a node that directly satisfies the port contract.
const SelfPort = "*"

// NoIndex is the list index of a connection endpoint that is not a list element.
const NoIndex = -1

// =============================================================================
// Document
// =============================================================================

// Document is the portable form of one node graph.
//
// A Document is built fresh by each export and treated as immutable
// afterwards; the importer only reads it.
type Document struct {
	Version         int          `json:"version"`
	RearrangeExport bool         `json:"rearrangeExport"`
	Nodes           []Node       `json:"nodes"`
	Connections     Connections  `json:"connections"`
	Comments        []Comment    `json:"comments"`
	ImportNames     []ImportName `json:"importNames"`
	Metadata        *Metadata    `json:"metadata,omitempty"`
}

// New returns an empty document at the current version.
func New() *Document {
	d := &Document{Version: CurrentVersion}
	d.normalize()
	return d
}

// UnmarshalJSON applies the defaults for fields older documents omit.
func (d *Document) UnmarshalJSON(data []byte) error {
	type raw Document
	r := raw{Version: CurrentVersion}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*d = Document(r)
	d.normalize()
	return nil
}

// normalize replaces nil slices with empty ones so documents always encode
// arrays, never null.
func (d *Document) normalize() {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
	if d.ImportNames == nil {
		d.ImportNames = []ImportName{}
	}
	d.Connections.normalize()
	for i := range d.Nodes {
		d.Nodes[i].normalize()
	}
	for i := range d.ImportNames {
		if d.ImportNames[i].Names == nil {
			d.ImportNames[i].Names = []string{}
		}
		normalizeDescriptor(&d.ImportNames[i].Type)
	}
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// ConnectionCount returns the number of edges of all three kinds.
func (d *Document) ConnectionCount() int {
	c := d.Connections
	return len(c.Data) + len(c.Control) + len(c.Reference)
}

// =============================================================================
// Node
// =============================================================================

// Node is one node of the graph.
type Node struct {
	ID              string             `json:"id"`
	X               float64            `json:"x"`
	Y               float64            `json:"y"`
	Type            typeref.Descriptor `json:"type"`
	SerializedPorts []PortCount        `json:"serializedPorts"`
	GlobalRefs      []GlobalRef        `json:"globalRefs"`
	Extras          []Extra            `json:"extras"`
}

func (n *Node) normalize() {
	if n.SerializedPorts == nil {
		n.SerializedPorts = []PortCount{}
	}
	if n.GlobalRefs == nil {
		n.GlobalRefs = []GlobalRef{}
	}
	if n.Extras == nil {
		n.Extras = []Extra{}
	}
	normalizeDescriptor(&n.Type)
}

func normalizeDescriptor(d *typeref.Descriptor) {
	if d.GenericParameters == nil {
		d.GenericParameters = []typeref.Descriptor{}
	}
	for i := range d.GenericParameters {
		normalizeDescriptor(&d.GenericParameters[i])
	}
}

// PortCount records the element count of one variadic port list.
type PortCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GlobalRef is a named external attachment. Value is literal text for
// literal-friendly types and a decimal import index otherwise. Drive marks a
// holder that is continuously synced from its import instead of set once.
type GlobalRef struct {
	Name  string `json:"name"`
	Drive bool   `json:"drive"`
	Value string `json:"value"`
	// Index is carried for older documents and is always NoIndex when written.
	Index int `json:"index"`
}

// UnmarshalJSON defaults Index to NoIndex.
func (g *GlobalRef) UnmarshalJSON(data []byte) error {
	type raw GlobalRef
	r := raw{Index: NoIndex}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*g = GlobalRef(r)
	return nil
}

// Extra is a node-kind-specific single-value slot, encoded like a GlobalRef value.
type Extra struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Well-known extra names.
const (
	ExtraValue = "Value"
	ExtraDrive = "Drive"
)

// =============================================================================
// Connections
// =============================================================================

// Connections groups the three edge kinds.
type Connections struct {
	// Data edges run from an output (from) to the input reading it (to).
	Data []Connection `json:"inputOutputConnections"`
	// Control edges run from an impulse (from) to the operation it triggers (to).
	Control []Connection `json:"impulseOperationConnections"`
	// Reference edges point from a target node (from) to the named reference
	// slot of the node holding the reference (to).
	Reference []Connection `json:"referenceConnections"`
}

func (c *Connections) normalize() {
	if c.Data == nil {
		c.Data = []Connection{}
	}
	if c.Control == nil {
		c.Control = []Connection{}
	}
	if c.Reference == nil {
		c.Reference = []Connection{}
	}
}

// Connection is one edge. Indices are NoIndex for endpoints that are not list
// elements.
type Connection struct {
	FromID    string `json:"fromId"`
	FromName  string `json:"fromName"`
	FromIndex int    `json:"fromIndex"`
	ToID      string `json:"toId"`
	ToName    string `json:"toName"`
	ToIndex   int    `json:"toIndex"`
}

// UnmarshalJSON defaults both indices to NoIndex.
func (c *Connection) UnmarshalJSON(data []byte) error {
	type raw Connection
	r := raw{FromIndex: NoIndex, ToIndex: NoIndex}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*c = Connection(r)
	return nil
}

// =============================================================================
// Comments, imports, metadata
// =============================================================================

// Comment is a free-floating note placed in the graph.
type Comment struct {
	Message string  `json:"message"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// ImportName lists the labels of the out-of-graph values of one type. The
// position of a label is the import index documents use to refer to it.
type ImportName struct {
	Type  typeref.Descriptor `json:"type"`
	Names []string           `json:"names"`
}

// Metadata carries optional presentation hints.
type Metadata struct {
	ColorR float64 `json:"colorR"`
	ColorG float64 `json:"colorG"`
	ColorB float64 `json:"colorB"`
}
