// Package mcp exposes agilemd's ownership operations to agent hosts over
// the Model Context Protocol on stdio.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/danrfletcher/agilemd/internal/assign"
	"github.com/danrfletcher/agilemd/internal/buffer"
	"github.com/danrfletcher/agilemd/internal/taskline"
)

// Server wraps the MCP server with agilemd's assignment service.
type Server struct {
	svc    *assign.Service
	server *mcp.Server
}

// NewServer creates a new agilemd MCP server.
func NewServer(svc *assign.Service, version string) *Server {
	s := &Server{svc: svc}

	impl := &mcp.Implementation{
		Name:    "agilemd",
		Version: version,
	}

	s.server = mcp.NewServer(impl, nil)
	s.registerTools()

	return s
}

// Run starts the MCP server on stdio.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "agilemd_assign",
		Description: "Change the owner of a task in a markdown file and cascade the change through its subtree. " +
			"Descendants whose effective owner would drift get their prior owner pinned as an explicit mark; " +
			"marks made redundant by the change are removed. Ownership cascading is best-effort: a line that is " +
			"not a task, or a file with no task on the line, results in no edits rather than an error.",
	}, s.handleAssign)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "agilemd_cascade",
		Description: "Re-run the ownership consistency pass over a whole markdown file: every explicit owner mark " +
			"that inheritance would reproduce anyway is removed. Use after external edits left the file cluttered.",
	}, s.handleCascade)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "agilemd_tree",
		Description: "Show the task tree of a markdown file with each task's effective owner and whether the owner " +
			"is explicit on the line or inherited from an ancestor.",
	}, s.handleTree)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "agilemd_parse",
		Description: "Parse one task line into its canonical fields (status, body, assignee, delegate, dates, block id) " +
			"and return the canonical serialization. Useful to inspect or normalize a single line.",
	}, s.handleParse)
}

// AssignArgs are the inputs for agilemd_assign.
type AssignArgs struct {
	File  string `json:"file" jsonschema:"Path to the markdown file"`
	Line  int    `json:"line" jsonschema:"1-based line number of the task to re-own"`
	Alias string `json:"alias,omitempty" jsonschema:"New owner alias; empty clears the explicit owner"`
}

// AssignResult reports what the cascade changed.
type AssignResult struct {
	Pinned  map[int]string `json:"pinned,omitempty"`
	Cleared []int          `json:"cleared,omitempty"`
	Changed int            `json:"changed_lines"`
}

func (s *Server) handleAssign(ctx context.Context, req *mcp.CallToolRequest, args AssignArgs) (*mcp.CallToolResult, any, error) {
	if args.File == "" || args.Line < 1 {
		return nil, nil, fmt.Errorf("file and a positive line are required")
	}
	snap, err := buffer.OpenSnapshot(args.File)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	edits, err := s.svc.AssignLine(args.File, snap, args.Line, args.Alias)
	if err != nil {
		// Best effort: degrade to "no edits" instead of failing the host's flow.
		return nil, AssignResult{}, nil
	}
	if err := snap.Flush(); err != nil {
		return nil, nil, err
	}
	return nil, assignResult(edits), nil
}

func assignResult(edits assign.EditSet) AssignResult {
	out := AssignResult{Changed: len(edits.Set) + len(edits.Remove)}
	if len(edits.Set) > 0 {
		out.Pinned = map[int]string{}
		for line, alias := range edits.Set {
			out.Pinned[line+1] = alias
		}
	}
	for line := range edits.Remove {
		out.Cleared = append(out.Cleared, line+1)
	}
	sort.Ints(out.Cleared)
	return out
}

// CascadeArgs are the inputs for agilemd_cascade.
type CascadeArgs struct {
	File string `json:"file" jsonschema:"Path to the markdown file to sweep"`
}

func (s *Server) handleCascade(ctx context.Context, req *mcp.CallToolRequest, args CascadeArgs) (*mcp.CallToolResult, any, error) {
	if args.File == "" {
		return nil, nil, fmt.Errorf("file is required")
	}
	snap, err := buffer.OpenSnapshot(args.File)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	edits, err := s.svc.Sweep(args.File, snap)
	if err != nil {
		return nil, AssignResult{}, nil
	}
	if err := snap.Flush(); err != nil {
		return nil, nil, err
	}
	return nil, assignResult(edits), nil
}

// TreeArgs are the inputs for agilemd_tree.
type TreeArgs struct {
	File string `json:"file" jsonschema:"Path to the markdown file"`
}

// TreeEntry is one task in the ownership tree.
type TreeEntry struct {
	Line     int    `json:"line"`
	ID       string `json:"id"`
	Depth    int    `json:"depth"`
	Owner    string `json:"owner,omitempty"`
	Explicit bool   `json:"explicit"`
}

func (s *Server) handleTree(ctx context.Context, req *mcp.CallToolRequest, args TreeArgs) (*mcp.CallToolResult, any, error) {
	if args.File == "" {
		return nil, nil, fmt.Errorf("file is required")
	}
	snap, err := buffer.OpenSnapshot(args.File)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	tree := s.svc.Trees.RefreshFrom(args.File, snap.Value())
	aliases := assign.Snapshot(snap.Value())

	var entries []TreeEntry
	for i, n := range tree.Nodes {
		depth := 0
		for p := n.Parent; p != -1; p = tree.Nodes[p].Parent {
			depth++
		}
		entries = append(entries, TreeEntry{
			Line:     n.Line,
			ID:       n.ID,
			Depth:    depth,
			Owner:    assign.Effective(tree, i, aliases),
			Explicit: aliases[n.Line-1] != "",
		})
	}
	return nil, entries, nil
}

// ParseArgs are the inputs for agilemd_parse.
type ParseArgs struct {
	Line string `json:"line" jsonschema:"The raw task line to parse"`
}

// ParsedLine is the codec view of one line.
type ParsedLine struct {
	IsTask    bool     `json:"is_task"`
	Status    string   `json:"status,omitempty"`
	Body      string   `json:"body,omitempty"`
	Assignee  string   `json:"assignee,omitempty"`
	Delegate  string   `json:"delegate,omitempty"`
	Dates     []string `json:"dates,omitempty"`
	BlockID   string   `json:"block_id,omitempty"`
	Canonical string   `json:"canonical"`
}

func (s *Server) handleParse(ctx context.Context, req *mcp.CallToolRequest, args ParseArgs) (*mcp.CallToolResult, any, error) {
	l := taskline.Parse(args.Line)
	out := ParsedLine{
		IsTask:    l.IsTask(),
		Canonical: s.svc.Codec.Serialize(l, taskline.Overrides{}),
	}
	if l.IsTask() {
		out.Status = l.Status
		out.Body = l.Body
		out.Assignee = l.ExplicitAlias()
		if l.Delegate != nil {
			out.Delegate = l.Delegate.Alias()
		}
		for _, d := range l.Dates {
			out.Dates = append(out.Dates, strings.TrimSpace(d.Raw))
		}
		out.BlockID = l.BlockID
	}
	return nil, out, nil
}
