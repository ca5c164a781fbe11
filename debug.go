package thicket

import (
	"fmt"
	"log"
	"os"
)

// DebugFlags selects the categories of debug notes a stage prints.
type DebugFlags uint8

const (
	DebugEvents DebugFlags = 1 << iota
	DebugGrabs
	DebugGestures
	DebugFocus

	DebugAll = DebugEvents | DebugGrabs | DebugGestures | DebugFocus
)

var debugFlagNames = map[string]DebugFlags{
	"events":   DebugEvents,
	"grabs":    DebugGrabs,
	"gestures": DebugGestures,
	"focus":    DebugFocus,
	"all":      DebugAll,
}

// SetDebugMode enables debug checks. Consistency violations panic instead
// of being logged, and disposed nodes are rejected by tree operations.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debugMode = enabled
}

// debugEnabled reports whether n is attached to a stage in debug mode.
// Detached subtrees are not checked.
func debugEnabled(n *Node) bool {
	s := n.Stage()
	return s != nil && s.debugMode
}

// SetDebugFlags selects which categories of debug notes are written to
// stderr.
func (s *Stage) SetDebugFlags(flags DebugFlags) {
	s.debugFlags = flags
}

// debugf prints a note to stderr when the category is enabled.
func (s *Stage) debugf(flag DebugFlags, format string, args ...any) {
	if s.debugFlags&flag == 0 {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[thicket] "+format+"\n", args...)
}

// debugAssert reports a broken internal invariant. In debug mode it panics;
// otherwise it is logged and execution continues.
func (s *Stage) debugAssert(cond bool, msg string) {
	if cond {
		return
	}
	if s.debugMode {
		panic("thicket debug: " + msg)
	}
	log.Printf("thicket: internal inconsistency: %s", msg)
}

// warnf reports recoverable API misuse.
func warnf(format string, args ...any) {
	log.Printf("thicket: "+format, args...)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("thicket debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[thicket] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[thicket] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}

func nodeName(n *Node) string {
	if n == nil {
		return "<none>"
	}
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node#%d", n.ID)
}
