// Package io reads resolved dependency graphs and writes analysis results.
//
// # Input Formats
//
// Two graph encodings are accepted. [ReadGraph] decodes a JSON document of
// nested nodes:
//
//	{
//	  "groupId": "com.example", "artifactId": "app", "version": "1.0",
//	  "children": [
//	    {"groupId": "org.x", "artifactId": "x", "version": "1.0", "scope": "compile",
//	     "winner": "org.x:x:jar:2.0 (compile)"}
//	  ]
//	}
//
// [ReadTreeText] parses the text printed by "mvn dependency:tree -Dverbose":
//
//	[INFO] com.example:app:jar:1.0
//	[INFO] +- org.a:a:jar:1.0:compile
//	[INFO] |  \- (org.x:x:jar:1.0:compile - omitted for conflict with 2.0)
//	[INFO] \- org.x:x:jar:2.0:compile
//
// A parenthesised entry "omitted for conflict with V" becomes winner metadata
// naming version V, so the node is flagged omitted by the annotator. Other
// verbose notes (duplicates, managed versions, cycles) record the node's own
// dependency string as winner and do not flag it.
//
// [ImportGraph] chooses the decoder from the file extension: ".json" selects
// JSON, anything else is treated as tree text.
//
// # Output Formats
//
// [WriteTree] emits the annotated tree as nested JSON objects with the fields
// groupId, artifactId, name, version, scope, isOmitted, winner, isLeaf,
// parent, winnerNodeName, pathToDependencyJar, pathToDependencyPom,
// pathToDependency, unused and children. An empty tree is written as "[]".
//
// [WriteReport] emits the run summary: counts, unused artifacts with their
// evidence and conflicts with both root paths.
//
// # Limits
//
// JSON graphs are decoded with encoding/json, which rejects nesting deeper
// than 10000 levels. Tree text has no depth limit.
package io
