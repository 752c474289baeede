package main

import "strings"

// Mode is the interaction state of an editor session.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeConnecting
	ModeEditingText
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeDragging:
		return "DRAG"
	case ModeConnecting:
		return "CONNECT"
	case ModeEditingText:
		return "EDIT"
	default:
		return "UNKNOWN"
	}
}

// NodeType only affects styling.
type NodeType string

const (
	NodeProcess  NodeType = "process"
	NodeDecision NodeType = "decision"
	NodeStart    NodeType = "start"
	NodeInput    NodeType = "input"
)

var nodeTypes = []NodeType{NodeProcess, NodeDecision, NodeStart, NodeInput}

func (t NodeType) Valid() bool {
	for _, nt := range nodeTypes {
		if t == nt {
			return true
		}
	}
	return false
}

// Next cycles through the node types in a fixed order.
func (t NodeType) Next() NodeType {
	for i, nt := range nodeTypes {
		if t == nt {
			return nodeTypes[(i+1)%len(nodeTypes)]
		}
	}
	return NodeProcess
}

// Side names one of the four connectors of a node.
type Side string

const (
	SideNone   Side = ""
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

var sides = []Side{SideTop, SideRight, SideBottom, SideLeft}

func (s Side) Valid() bool {
	switch s {
	case SideTop, SideRight, SideBottom, SideLeft:
		return true
	}
	return false
}

// ParseSide reads a side name, falling back to def for empty or unknown input.
func ParseSide(s string, def Side) Side {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	if side.Valid() {
		return side
	}
	return def
}

// Placement, layout and interaction defaults.
const (
	defaultNodeText = "New Node"

	placementStartX = 100.0
	placementStartY = 100.0
	placementStepX  = 160.0
	placementRowY   = 120.0
	placementMaxX   = 2000.0

	minNodeWidth = 120.0
	nodeHeight   = 60.0
	textUnit     = 8.0
	textPadding  = 32.0

	controlOffsetMin = 50.0
	controlOffsetMax = 100.0
	curveSegments    = 64

	defaultGridSize   = 20.0
	defaultSnapRadius = 20.0
	connectorRadius   = 8.0
	pathTolerance     = 6.0

	minScale  = 0.5
	maxScale  = 2.0
	scaleStep = 0.1

	jsonExportName = "flow-chart-data.json"
	pngExportName  = "flow-chart-export.png"
)

type FileOperation int

const (
	FileOpImport FileOperation = iota
	FileOpExportJSON
	FileOpExportPNG
)

type ConfirmAction int

const (
	ConfirmNone ConfirmAction = iota
	ConfirmClearAll
	ConfirmQuit
	ConfirmDeleteNode
	ConfirmOverwriteFile
)
