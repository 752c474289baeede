package main

import "errors"

var (
	ErrSelfLoop              = errors.New("connection source and target are the same node")
	ErrUnknownNode           = errors.New("unknown node")
	ErrMalformedDocument     = errors.New("malformed diagram document")
	ErrRasterizerUnavailable = errors.New("image export is not available")
	ErrNothingToExport       = errors.New("nothing to export")
	ErrNothingSelected       = errors.New("nothing selected")
	ErrReadOnlyProperty      = errors.New("property is read-only")
	ErrUnknownProperty       = errors.New("unknown property")
	ErrInvalidNodeType       = errors.New("invalid node type")
	ErrEmptyText             = errors.New("node text cannot be empty")
	ErrInvalidCoordinate     = errors.New("coordinate must be a finite number")
)
