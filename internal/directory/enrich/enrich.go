// Package enrich merges raw employee records with resolved named-list
// mappings. Stateless given its inputs; no I/O.
package enrich

import (
	"directory-enricher/internal/directory"
	"directory-enricher/internal/directory/resolver"
)

// Enrich resolves the category codes of a raw record into display names.
// For each of department, title and site: a code found in the flattened
// id table resolves to its name; otherwise the raw value is kept as a
// readable fallback, and the field stays empty only when the raw record
// carried nothing at all. Sites are optional and may be nil.
func Enrich(raw directory.RawEmployeeRecord, departments, titles *directory.NamedList, sites *directory.NamedList) directory.EnrichedEmployeeRecord {
	record := directory.EnrichedEmployeeRecord{
		Email:       raw.Email,
		DisplayName: raw.DisplayName,
		Manager:     raw.Supervisor,
	}

	record.Team, record.DepartmentID = resolveCategory(raw.Department, departments)
	record.Title, record.TitleID = resolveCategory(raw.JobTitle, titles)
	record.Site, record.SiteID = resolveCategory(raw.Location, sites)

	return record
}

// resolveCategory maps one raw value through a category tree. When the
// value is a known id the resolved name and the id are returned; when it
// is not (or the tree is unavailable) the value itself is kept as the
// display text with no id.
func resolveCategory(rawValue string, list *directory.NamedList) (name, id string) {
	if rawValue == "" {
		return "", ""
	}
	if list == nil {
		return rawValue, ""
	}

	table := resolver.Flatten(list.Items)
	if resolved, ok := table[rawValue]; ok {
		return resolved, rawValue
	}

	return rawValue, ""
}

// FillIDs is the reverse direction: given a record whose team/title/site
// are names but whose ids are unset, it resolves each id by text search
// against the corresponding tree. Ids already present are never
// overwritten, which makes the operation idempotent.
func FillIDs(record directory.EnrichedEmployeeRecord, departments, titles *directory.NamedList, sites *directory.NamedList) directory.EnrichedEmployeeRecord {
	if record.DepartmentID == "" && departments != nil {
		if found := resolver.FindByText(departments.Items, record.Team); found != nil {
			record.DepartmentID = found.ID
		}
	}
	if record.TitleID == "" && titles != nil {
		if found := resolver.FindByText(titles.Items, record.Title); found != nil {
			record.TitleID = found.ID
		}
	}
	if record.SiteID == "" && sites != nil {
		if found := resolver.FindByText(sites.Items, record.Site); found != nil {
			record.SiteID = found.ID
		}
	}
	return record
}
