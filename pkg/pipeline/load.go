package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/graph"
)

// GraphInput is the JSON input format for graphs. It mirrors the
// drawing format minus positions; X and Y are optional and only
// consulted when the layout keeps positions.
type GraphInput struct {
	Nodes []InputNode `json:"nodes"`
	Edges []InputEdge `json:"edges,omitempty"`
}

// InputNode is a node of the JSON input format. Nodes are identified
// by their position in the nodes array.
type InputNode struct {
	Label  string  `json:"label,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// InputEdge connects two node indices with an optional weight.
type InputEdge struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight,omitempty"`
}

// ToGraph builds a graph from the input. Edge endpoints must refer to
// existing node indices.
func (in *GraphInput) ToGraph() (*graph.Graph, error) {
	g := graph.New(len(in.Nodes), len(in.Edges))
	for _, n := range in.Nodes {
		g.AddNode(graph.Node{Label: n.Label, Width: n.Width, Height: n.Height, X: n.X, Y: n.Y})
	}
	for i, e := range in.Edges {
		if _, err := g.AddEdge(graph.Edge{Source: e.Source, Target: e.Target, Weight: e.Weight}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "edge %d", i)
		}
	}
	return g, nil
}

// GraphInputFromGraph captures a graph in the JSON input format.
func GraphInputFromGraph(g *graph.Graph) GraphInput {
	in := GraphInput{
		Nodes: make([]InputNode, g.NodeCount()),
		Edges: make([]InputEdge, g.EdgeCount()),
	}
	for v := 0; v < g.NodeCount(); v++ {
		n := g.Node(v)
		in.Nodes[v] = InputNode{Label: n.Label, Width: n.Width, Height: n.Height, X: n.X, Y: n.Y}
	}
	for e := 0; e < g.EdgeCount(); e++ {
		ed := g.Edge(e)
		in.Edges[e] = InputEdge{Source: ed.Source, Target: ed.Target, Weight: ed.Weight}
	}
	return in
}

// MarshalGraph serializes a graph to canonical JSON. The output is
// deterministic and is used both for caching and for content hashing.
func MarshalGraph(g *graph.Graph) ([]byte, error) {
	in := GraphInputFromGraph(g)
	return json.Marshal(&in)
}

// ParseGraph parses raw graph bytes in the given input format.
func ParseGraph(data []byte, format string) (*graph.Graph, error) {
	switch format {
	case InputJSON, "":
		return parseJSON(data)
	case InputEdgeList:
		return parseEdgeList(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", format)
	}
}

// DetectInputFormat guesses the input format from a file extension.
// Anything that isn't JSON is treated as an edge list.
func DetectInputFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return InputJSON
	}
	return InputEdgeList
}

// LoadGraph reads and parses the graph named by the options, without
// caching. Most callers want [Runner.Load] instead.
func LoadGraph(opts Options) (*graph.Graph, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	raw, format, err := readInput(opts)
	if err != nil {
		return nil, err
	}
	return ParseGraph(raw, format)
}

// readInput returns the raw graph bytes and the format they are in.
func readInput(o Options) ([]byte, string, error) {
	if o.Graph != nil {
		data, err := json.Marshal(o.Graph)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "marshal inline graph")
		}
		return data, InputJSON, nil
	}
	data, err := os.ReadFile(o.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", o.Input)
		}
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "read %s", o.Input)
	}
	return data, o.InputFormat, nil
}

func parseJSON(data []byte) (*graph.Graph, error) {
	var in GraphInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal graph")
	}
	return in.ToGraph()
}

// parseEdgeList parses the plain text edge-list format: one edge per
// line as "source target [weight]", a single index to declare an
// isolated node, '#' starts a comment. Node indices are non-negative;
// the node set is the dense range up to the largest index seen.
func parseEdgeList(data []byte) (*graph.Graph, error) {
	var (
		edges   []graph.Edge
		maxNode = -1
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNr := 0
	for scanner.Scan() {
		lineNr++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 3 {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"line %d: want \"source target [weight]\", got %d fields", lineNr, len(fields))
		}

		u, err := parseNodeIndex(fields[0], lineNr)
		if err != nil {
			return nil, err
		}
		maxNode = max(maxNode, u)
		if len(fields) == 1 {
			continue
		}

		v, err := parseNodeIndex(fields[1], lineNr)
		if err != nil {
			return nil, err
		}
		maxNode = max(maxNode, v)

		weight := 0.0
		if len(fields) == 3 {
			weight, err = strconv.ParseFloat(fields[2], 64)
			if err != nil || weight < 0 {
				return nil, errors.New(errors.ErrCodeInvalidFormat,
					"line %d: invalid edge weight %q", lineNr, fields[2])
			}
		}
		edges = append(edges, graph.Edge{Source: u, Target: v, Weight: weight})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "scan edge list")
	}

	g := graph.New(maxNode+1, len(edges))
	for v := 0; v <= maxNode; v++ {
		g.AddNode(graph.Node{})
	}
	for i, e := range edges {
		if _, err := g.AddEdge(e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "edge %d", i)
		}
	}
	return g, nil
}

func parseNodeIndex(field string, lineNr int) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil || v < 0 {
		return 0, errors.New(errors.ErrCodeInvalidFormat,
			"line %d: invalid node index %q", lineNr, field)
	}
	return v, nil
}
