// Package access decides what a requester may do with a document.
package access

import "docvault/internal/model"

// Decision is the outcome of evaluating a requester against a document.
type Decision struct {
	IsOwner bool
	Level   model.AccessLevel
}

// Evaluate applies the fixed precedence owner > public > explicit permission > none.
//
// The owner gets an implicit edit level. Public documents grant view only, so an explicit
// entry never adds anything on top of public visibility for non-owners reading the document.
func Evaluate(doc *model.Document, requesterID string) Decision {
	if doc.IsOwnedBy(requesterID) {
		return Decision{IsOwner: true, Level: model.AccessEdit}
	}
	if doc.IsPublic {
		return Decision{Level: model.AccessView}
	}
	return Decision{Level: doc.Permissions.Lookup(requesterID)}
}

// CanRead reports whether the requester may fetch or download the document.
// An explicit edit grant is sufficient for reading.
func (d Decision) CanRead() bool {
	return d.Level.AtLeast(model.AccessView)
}

// CanManage reports whether the requester may change metadata, permissions or versions,
// or delete the document. These operations are owner-exclusive and never delegated.
func (d Decision) CanManage() bool {
	return d.IsOwner
}
