// Package directory defines the data model shared by the directory
// client, resolver, enrichment pipeline and cache.
package directory

import (
	"strings"
	"time"
)

// Category names of the named lists managed by the directory service.
// Lookups by category name are case-insensitive.
const (
	CategoryDepartments = "departments"
	CategoryTitles      = "work titles"
	CategorySites       = "sites"
)

// NamedListItem is one node of a category tree. Children may be empty;
// depth is unbounded but practically shallow.
type NamedListItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Value    string          `json:"value"`
	Children []NamedListItem `json:"children,omitempty"`
}

// NamedList is a remotely managed hierarchical category such as
// departments, work titles or sites.
type NamedList struct {
	Name  string          `json:"name"`
	Items []NamedListItem `json:"values"`
}

// RawEmployeeRecord carries the fields exactly as the directory service
// returns them. Department, job title and location hold either an opaque
// category code or free display text, depending on upstream tenant setup.
type RawEmployeeRecord struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Department  string `json:"department"`
	JobTitle    string `json:"jobTitle"`
	Location    string `json:"location"`
	Supervisor  string `json:"supervisor"`
}

// EnrichedEmployeeRecord is the unit stored in the cache and returned to
// callers. Team, Title and Site are resolved display names; when
// resolution fails the raw code is preserved there as a readable fallback.
type EnrichedEmployeeRecord struct {
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	Team         string `json:"team"`
	Title        string `json:"title"`
	Site         string `json:"site,omitempty"`
	DepartmentID string `json:"departmentId,omitempty"`
	TitleID      string `json:"titleId,omitempty"`
	SiteID       string `json:"siteId,omitempty"`
	Manager      string `json:"manager,omitempty"`
}

// CacheEntry pairs an enriched record with the time it was fetched.
type CacheEntry struct {
	Record    EnrichedEmployeeRecord
	FetchedAt time.Time
}

// SnapshotEntry is the persisted form of a CacheEntry.
type SnapshotEntry struct {
	Record    EnrichedEmployeeRecord `json:"record"`
	FetchedAt string                 `json:"fetchedAt"`
}

// CacheSnapshot is the serializable cache state written to the snapshot
// store. Timestamps are ISO-8601. A zero LastFullRefresh means no full
// directory load has completed.
type CacheSnapshot struct {
	Entries         map[string]SnapshotEntry `json:"entries"`
	LastFullRefresh string                   `json:"lastFullRefresh,omitempty"`
}

// NormalizeIdentity lower-cases and trims an email address into the
// identity key used throughout the cache.
func NormalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseTimestamp parses a persisted ISO-8601 timestamp, returning the
// zero time for empty or malformed input.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatTimestamp renders a timestamp in the persisted ISO-8601 form.
// The zero time renders as the empty string.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
