// Package graphdoc defines the portable document format for node graphs.
//
// A [Document] is what the exporter produces and the importer consumes. It
// is plain data: nodes with their type descriptors and positions, three edge
// lists, comments, the import table and optional metadata.
//
// # Format
//
//	{
//	  "version": 1,
//	  "rearrangeExport": false,
//	  "nodes": [{
//	    "id": "0f8c...",
//	    "x": 0, "y": 0,
//	    "type": {"fullTypeName": "Flux.Math.Add", "genericParameters": [{"fullTypeName": "float", "genericParameters": []}]},
//	    "serializedPorts": [{"name": "Inputs", "count": 3}],
//	    "globalRefs": [{"name": "Value", "drive": false, "value": "2.5", "index": -1}],
//	    "extras": [{"name": "Value", "value": "0"}]
//	  }],
//	  "connections": {
//	    "inputOutputConnections": [{"fromId": "a", "fromName": "*", "fromIndex": -1, "toId": "b", "toName": "Input", "toIndex": -1}],
//	    "impulseOperationConnections": [],
//	    "referenceConnections": []
//	  },
//	  "comments": [{"message": "note", "x": 0, "y": 0}],
//	  "importNames": [{"type": {"fullTypeName": "Flux.World.Slot", "genericParameters": []}, "names": ["Root"]}]
//	}
//
// Values of literal-friendly types are stored as text (see pkg/literal).
// Everything else is stored as a decimal index into the import list of its
// type: the label at that position names the value for the import mode that
// resolves it.
//
// # Compatibility
//
// Keys decode case-insensitively and missing fields default (version 1,
// empty arrays, indices -1), so documents written by older tools load.
//
// Common operations:
//
//	doc, err := graphdoc.ReadFile("graph.flux.json")
//	issues := doc.Validate()
//	err = graphdoc.WriteFile(doc, "copy.flux.json")
package graphdoc
