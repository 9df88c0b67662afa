// Package model contains domain models passed between layers.
package model

import "strings"

// Item is a named shopping-list entry. ID is assigned by the store on
// creation and serialized as "_id" to match the document-store shape.
type Item struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ItemPatch carries the mutable fields of an Item. A nil field is left
// unchanged.
type ItemPatch struct {
	Name *string
}

// Empty reports whether the patch sets no field.
func (p ItemPatch) Empty() bool {
	return p.Name == nil
}

// ValidName reports whether name is usable for an Item: non-empty once
// surrounding whitespace is removed.
func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}
