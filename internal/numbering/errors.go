package numbering

import (
	"errors"
	"fmt"

	"github.com/dgallion1/numref/internal/doctree"
)

// ErrMalformedTree is returned when the tree breaks a structural contract
// the numbering pass relies on. It aborts the whole run.
var ErrMalformedTree = errors.New("malformed document tree")

// StructureError wraps ErrMalformedTree with the offending node.
type StructureError struct {
	Node doctree.NodeID
	Msg  string
}

func (e *StructureError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: node %d: %s", ErrMalformedTree, e.Node, e.Msg)
}

func (e *StructureError) Unwrap() error { return ErrMalformedTree }

func malformedf(node doctree.NodeID, format string, args ...any) error {
	return &StructureError{Node: node, Msg: fmt.Sprintf(format, args...)}
}
