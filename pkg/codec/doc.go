// Package codec serializes models and their edits.
//
// A [Document] is a snapshot of every cell reachable from the root, written
// as JSON or YAML. [FromModel] and [ToModel] convert between documents and
// models; [ToModel] rejects documents that do not describe a tree with
// known terminals.
//
// Edits are written as XML, one <edit> element per committed edit holding
// its changes in execution order:
//
//	<edit>
//	  <ChildChange parent="1" child="2" index="0"><Cell id="2" kind="vertex" value="A">...</Cell></ChildChange>
//	  <ValueChange cell="2" value="B"></ValueChange>
//	</edit>
//
// A [Recorder] appends every edit a model commits, undoes or redoes to a
// writer. [Replay] reads such a log back and applies it edit by edit, so a
// model restored from a document and replayed with the edits recorded
// since reaches the same state.
//
// Values that are not strings are written with fmt.Sprint and come back
// as strings.
package codec
