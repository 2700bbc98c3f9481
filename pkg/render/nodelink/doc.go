// Package nodelink renders laid-out drawings as node-link diagrams.
//
// The package converts a [drawing.Drawing] to Graphviz DOT with every
// node position pinned, then renders SVG or PNG through Graphviz's neato
// engine in no-op layout mode. Because positions are pinned, the diagram
// shows exactly the layout the engine computed; Graphviz only draws.
package nodelink
