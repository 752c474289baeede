package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// docID accepts both string and integer ids; older files wrote numbers.
type docID string

func (id *docID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = docID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = docID(n.String())
	return nil
}

type nodeRecord struct {
	ID   docID    `json:"id"`
	Type NodeType `json:"type"`
	Text string   `json:"text"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
}

type connectionRecord struct {
	ID             docID  `json:"id"`
	SourceID       docID  `json:"sourceId"`
	TargetID       docID  `json:"targetId"`
	SourcePosition Side   `json:"sourcePosition"`
	TargetPosition Side   `json:"targetPosition"`
	Label          string `json:"label"`
}

// Document is the persisted form of a diagram.
type Document struct {
	Nodes            []nodeRecord       `json:"nodes"`
	Connections      []connectionRecord `json:"connections"`
	NextNodeID       *int               `json:"nextNodeId,omitempty"`
	NextConnectionID *int               `json:"nextConnectionId,omitempty"`
}

// NewDocument snapshots the diagram. Positions come from the store, which
// every drag writes through to.
func NewDocument(d *Diagram) Document {
	doc := Document{
		Nodes:       make([]nodeRecord, 0, len(d.nodes)),
		Connections: make([]connectionRecord, 0, len(d.connections)),
	}
	for _, n := range d.nodes {
		doc.Nodes = append(doc.Nodes, nodeRecord{
			ID:   docID(n.ID),
			Type: n.Type,
			Text: n.Text,
			X:    n.Position.X,
			Y:    n.Position.Y,
		})
	}
	for _, c := range d.connections {
		doc.Connections = append(doc.Connections, connectionRecord{
			ID:             docID(c.ID),
			SourceID:       docID(c.SourceID),
			TargetID:       docID(c.TargetID),
			SourcePosition: c.SourceSide,
			TargetPosition: c.TargetSide,
			Label:          c.Label,
		})
	}
	nextNode, nextConn := d.Counters()
	doc.NextNodeID = &nextNode
	doc.NextConnectionID = &nextConn
	return doc
}

// EncodeDocument writes the diagram as indented JSON.
func EncodeDocument(w io.Writer, d *Diagram) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(d)); err != nil {
		return fmt.Errorf("encode diagram: %w", err)
	}
	return nil
}

// DecodeDocument validates and decodes a document into a new Diagram. The
// caller's diagram is never touched, so a failed import changes nothing.
func DecodeDocument(r io.Reader) (*Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return doc.Diagram()
}

// Diagram rebuilds the document through the store's own create operations,
// then restores the original ids. Duplicate ids, self-loops and dangling
// connections reject the whole document.
func (doc Document) Diagram() (*Diagram, error) {
	d := NewDiagram()

	maxNode := 0
	for _, rec := range doc.Nodes {
		id := string(rec.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: node without id", ErrMalformedDocument)
		}
		if _, dup := d.Node(id); dup {
			return nil, fmt.Errorf("%w: duplicate node id %q", ErrMalformedDocument, id)
		}
		pos := Point{rec.X, rec.Y}
		d.CreateNode(&pos, rec.Type, rec.Text)
		d.restoreLastNodeID(id)
		maxNode = max(maxNode, numericID(id))
	}

	maxConn := 0
	for _, rec := range doc.Connections {
		id := string(rec.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: connection without id", ErrMalformedDocument)
		}
		if _, dup := d.Connection(id); dup {
			return nil, fmt.Errorf("%w: duplicate connection id %q", ErrMalformedDocument, id)
		}
		_, err := d.CreateConnection(
			string(rec.SourceID), string(rec.TargetID),
			ParseSide(string(rec.SourcePosition), SideRight),
			ParseSide(string(rec.TargetPosition), SideLeft),
			rec.Label,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: connection %s: %v", ErrMalformedDocument, id, err)
		}
		d.restoreLastConnectionID(id)
		maxConn = max(maxConn, numericID(id))
	}

	nextNode := len(doc.Nodes) + 1
	if doc.NextNodeID != nil {
		nextNode = *doc.NextNodeID
	}
	nextConn := len(doc.Connections) + 1
	if doc.NextConnectionID != nil {
		nextConn = *doc.NextConnectionID
	}
	d.setCounters(max(nextNode, maxNode+1), max(nextConn, maxConn+1))

	if n := len(d.nodes); n > 0 {
		d.setCursor(d.nodes[n-1].Position)
	}
	return d, nil
}

// numericID is the counter value an id occupies, or 0 when it is not a
// number the counter can pass.
func numericID(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 || n == math.MaxInt {
		return 0
	}
	return n
}
