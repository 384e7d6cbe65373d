package depgraph

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelviz/pkg/digraph"
	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	"github.com/matzehuels/modelviz/pkg/metadata"
)

// Call is one reported caller→callee relation.
type Call struct {
	Caller   *metadata.Method
	Callee   metadata.MethodRef
	OpCode   metadata.OpCode
	Resolved bool
}

// Options bounds and observes a call-graph walk. The zero value walks the
// whole reachable graph silently.
type Options struct {
	// MaxDepth stops descending below this many calls from the entry.
	// Zero means unbounded.
	MaxDepth int
	// MaxNodes stops descending once this many methods have been visited.
	// Zero means unbounded.
	MaxNodes int
	// OnCall is invoked for every call instruction, before any descent.
	OnCall func(Call)
	// Logger receives one debug line per call. Defaults to a discard logger.
	Logger *log.Logger
}

// Stats summarizes a call-graph walk.
type Stats struct {
	// Methods is the number of methods visited, including the entry.
	Methods int `json:"methods"`
	// Calls is the number of call instructions reported.
	Calls int `json:"calls"`
	// Unresolved counts calls whose target has no available body.
	Unresolved int `json:"unresolved"`
	// SameModule counts resolved calls not descended because caller and
	// callee share a module.
	SameModule int `json:"same_module"`
	// Revisits counts calls into methods that were already visited.
	Revisits int `json:"revisits"`
	// Truncated counts descents skipped because of MaxDepth or MaxNodes.
	Truncated int `json:"truncated"`
	// MaxDepth is the deepest call chain walked.
	MaxDepth int `json:"max_depth"`
}

type frame struct {
	method *metadata.Method
	depth  int
	pc     int
}

// Calls walks the call graph of m starting at entry and returns it as a graph
// of method vertices. The walk checks ctx each time it enters a method and
// returns the partial graph together with ctx's error when cancelled.
func Calls(ctx context.Context, m metadata.Module, entry *metadata.Method, opts Options) (*digraph.Graph, Stats, error) {
	var stats Stats
	if entry == nil {
		return nil, stats, mverrors.New(mverrors.ErrCodeEntryNotFound, "no entry method")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	g := digraph.New(digraph.Metadata{
		MetaGraphKind: "calls",
		MetaModule:    m.Name(),
		MetaEntry:     entry.FullName,
	})
	if err := g.AddVertex(methodVertex(entry)); err != nil {
		return nil, stats, mverrors.Wrap(mverrors.ErrCodeInvalidInput, err, "entry method")
	}

	visited := map[string]bool{entry.FullName: true}
	stack := []*frame{{method: entry}}
	stats.Methods = 1

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.pc == 0 {
			if err := ctx.Err(); err != nil {
				return g, stats, err
			}
		}
		if top.pc >= len(top.method.Instructions) {
			stack = stack[:len(stack)-1]
			continue
		}
		in := top.method.Instructions[top.pc]
		top.pc++
		if !in.OpCode.IsCall() || in.Operand == nil {
			continue
		}

		ref := *in.Operand
		callee, resolved := m.Resolve(ref)
		if err := record(g, top.method, ref, callee, resolved, in.OpCode); err != nil {
			return g, stats, err
		}
		stats.Calls++
		logger.Debug("call", "caller", top.method.FullName, "callee", ref.FullName, "resolved", resolved)
		if opts.OnCall != nil {
			opts.OnCall(Call{Caller: top.method, Callee: ref, OpCode: in.OpCode, Resolved: resolved})
		}

		switch {
		case !resolved:
			stats.Unresolved++
			continue
		case callee.Module == top.method.Module:
			stats.SameModule++
			continue
		case visited[callee.FullName]:
			stats.Revisits++
			continue
		case opts.MaxDepth > 0 && top.depth+1 > opts.MaxDepth,
			opts.MaxNodes > 0 && len(visited) >= opts.MaxNodes:
			stats.Truncated++
			logger.Debug("walk bound reached", "callee", callee.FullName, "depth", top.depth+1)
			continue
		}

		visited[callee.FullName] = true
		stats.Methods++
		if top.depth+1 > stats.MaxDepth {
			stats.MaxDepth = top.depth + 1
		}
		stack = append(stack, &frame{method: callee, depth: top.depth + 1})
	}
	return g, stats, nil
}

func record(g *digraph.Graph, caller *metadata.Method, ref metadata.MethodRef, callee *metadata.Method, resolved bool, op metadata.OpCode) error {
	to := digraph.Vertex{
		ID:   ref.FullName,
		Kind: digraph.KindExternal,
		Meta: digraph.Metadata{"module": ref.Module},
	}
	if resolved {
		to = methodVertex(callee)
	}
	if err := g.AddVertex(to); err != nil {
		return mverrors.Wrap(mverrors.ErrCodeInvalidInput, err, "call target of %s", caller.FullName)
	}
	return g.AddEdge(digraph.Edge{
		From: caller.FullName,
		To:   to.ID,
		Meta: digraph.Metadata{"op": op.String()},
	})
}

func methodVertex(m *metadata.Method) digraph.Vertex {
	return digraph.Vertex{
		ID:   m.FullName,
		Kind: digraph.KindMethod,
		Meta: digraph.Metadata{"module": m.Module, "name": m.Name},
	}
}

// EntryPoint returns the method to start a walk from: the method named by
// name when it is non-empty, and the module's declared entry point otherwise.
func EntryPoint(m metadata.Module, name string) (*metadata.Method, error) {
	if name != "" {
		method, ok := metadata.FindMethod(m, name)
		if !ok {
			return nil, mverrors.New(mverrors.ErrCodeEntryNotFound, "method not found: %s", name)
		}
		return method, nil
	}
	method, ok := m.EntryPoint()
	if !ok {
		return nil, mverrors.New(mverrors.ErrCodeEntryNotFound, "module %s declares no entry point", m.Name())
	}
	return method, nil
}
