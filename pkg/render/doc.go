// Package render draws graph documents as node-link diagrams.
//
// # Overview
//
// [ToDOT] converts a document to Graphviz DOT source. Nodes appear as boxes
// labeled with their short type name, and the three connection kinds are
// drawn with distinct edge styles:
//
//   - data: solid arrows from the output to the input reading it
//   - control: bold amber arrows from the impulse to the operation it triggers
//   - reference: dashed arrows from the referenced node to the holder
//
// Comments become note shapes that are not connected to anything.
//
// # Usage
//
//	dot := render.ToDOT(doc, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(dot)
//
// For PDF or PNG output, convert the SVG:
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package render
