// Package hierarchy rebuilds the collection tree from the flat parent-pointer
// list returned by the backend and computes the partial views the tree and
// search commands render: ancestor chains for matched collections, bounded
// descendant subtrees below them, and the merged union of both.
package hierarchy

import "errors"

// RootID is the canonical id of the implicit top-level container. Backend
// conventions for "no parent" (null, absent field, the literal "root") are
// mapped onto RootID before nodes reach this package.
const RootID = 0

// RootName is the display name used for the root sentinel when it appears in
// rendered output.
const RootName = "Root"

// ErrIntegrity reports malformed hierarchy data from the backend: a parent
// reference that resolves to no node in the registry, a duplicate or reserved
// id, or a cycle in the parent relation. It is never recovered from locally.
var ErrIntegrity = errors.New("hierarchy integrity violation")

// ErrValidation reports a caller-supplied parameter out of range, detected
// before any traversal work begins.
var ErrValidation = errors.New("invalid parameter")

// Node is one folder-like entity as fetched from the backend.
type Node struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent_id"`
	Archived bool   `json:"archived"`
}
