package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okanele/orrery/pkg/drawing"
)

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "svg" {
		t.Errorf("parseFormats(\"\") = %v, want [svg]", got)
	}
	if got := parseFormats("dot,json"); len(got) != 2 || got[0] != "dot" || got[1] != "json" {
		t.Errorf("parseFormats(\"dot,json\") = %v", got)
	}
}

func TestDrawingPath(t *testing.T) {
	cases := map[string]string{
		"graph.json":   "graph.drawing.json",
		"nets/g.edges": "nets/g.drawing.json",
		"noextension":  "noextension.drawing.json",
	}
	for in, want := range cases {
		if got := drawingPath(in); got != want {
			t.Errorf("drawingPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderBasePath(t *testing.T) {
	cases := []struct {
		output, input, want string
	}{
		{"", "g.drawing.json", "g"},
		{"", "g.json", "g"},
		{"out.svg", "g.drawing.json", "out"},
		{"out", "g.drawing.json", "out"},
	}
	for _, tc := range cases {
		if got := renderBasePath(tc.output, tc.input); got != tc.want {
			t.Errorf("renderBasePath(%q, %q) = %q, want %q", tc.output, tc.input, got, tc.want)
		}
	}
}

func TestCacheDirPrefersConfig(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.CacheDir = "/tmp/custom-cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != "/tmp/custom-cache" {
		t.Errorf("cacheDir() = %q", dir)
	}

	c.Config.CacheDir = ""
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err = c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}

func TestLayoutAndRenderCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)

	graphPath := filepath.Join(dir, "graph.edges")
	if err := os.WriteFile(graphPath, []byte("0 1\n1 2\n2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	drawingOut := filepath.Join(dir, "graph.drawing.json")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"layout", graphPath, "--quality", "draft", "--no-cache", "-o", drawingOut})
	if err := root.Execute(); err != nil {
		t.Fatalf("layout command: %v", err)
	}

	d, err := drawing.ReadFile(drawingOut)
	if err != nil {
		t.Fatalf("read drawing: %v", err)
	}
	if len(d.Nodes) != 4 {
		t.Errorf("drawing has %d nodes, want 4", len(d.Nodes))
	}

	dotOut := filepath.Join(dir, "graph.dot")
	root = c.RootCommand()
	root.SetArgs([]string{"render", drawingOut, "-f", "dot", "--no-cache", "-o", dotOut})
	if err := root.Execute(); err != nil {
		t.Fatalf("render command: %v", err)
	}

	data, err := os.ReadFile(dotOut)
	if err != nil {
		t.Fatalf("read dot output: %v", err)
	}
	if !strings.Contains(string(data), "graph G {") {
		t.Errorf("dot output malformed:\n%s", data)
	}
}

func TestRenderCommandRejectsBadFormat(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"render", "whatever.json", "-f", "gif"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestListDrawingsSkipsNonDrawings(t *testing.T) {
	dir := t.TempDir()

	d := drawing.Drawing{
		ID:    drawing.NewID(),
		Nodes: []drawing.Node{{ID: 0}},
	}
	if err := drawing.WriteFile(d, filepath.Join(dir, "a.drawing.json")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := listDrawings(dir)
	if err != nil {
		t.Fatalf("listDrawings: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("listDrawings returned %d entries, want 1", len(entries))
	}
	if entries[0].Nodes != 1 {
		t.Errorf("entry nodes = %d, want 1", entries[0].Nodes)
	}
}
