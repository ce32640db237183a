// Package resolver walks named-list category trees. All operations are
// pure functions over an immutable tree snapshot; no I/O.
package resolver

import (
	"strings"

	"directory-enricher/internal/directory"
)

// FindByText returns the first item whose Name or Value matches text,
// compared case-insensitively. The walk is pre-order depth-first: each
// node is checked before its children, and the first match wins. Returns
// nil for blank text or an empty tree.
func FindByText(items []directory.NamedListItem, text string) *directory.NamedListItem {
	needle := strings.TrimSpace(text)
	if needle == "" {
		return nil
	}

	for i := range items {
		item := &items[i]
		if strings.EqualFold(item.Name, needle) || strings.EqualFold(item.Value, needle) {
			return item
		}
		if found := FindByText(item.Children, needle); found != nil {
			return found
		}
	}

	return nil
}

// Flatten collects every node of the tree into an id to name table using
// the same pre-order walk as FindByText. This is the fast path when a
// record already carries a category code.
func Flatten(items []directory.NamedListItem) map[string]string {
	table := make(map[string]string)
	flattenInto(items, table)
	return table
}

func flattenInto(items []directory.NamedListItem, table map[string]string) {
	for i := range items {
		item := &items[i]
		if item.ID != "" {
			// First occurrence wins; ids are unique within a list
			// but duplicated input must not flip earlier entries.
			if _, exists := table[item.ID]; !exists {
				table[item.ID] = item.Name
			}
		}
		flattenInto(item.Children, table)
	}
}
