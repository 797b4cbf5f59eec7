// Package models defines the classification rows, occupation records, snapshots and pages
// shared by the builder, the catalog and the HTTP API.
package models

import "time"

// InvalidLevel marks a classification row whose level column could not be parsed.
const InvalidLevel = -1

// Hierarchy levels of the classification table. Levels below LevelUnitGroup are ancestor groups.
const (
	LevelBroadCategory = 1
	LevelMajorGroup    = 2
	LevelSubMajorGroup = 3
	LevelMinorGroup    = 4
	LevelUnitGroup     = 5
)

// ClassificationRow is one row of the flat classification table. It only lives during a build.
type ClassificationRow struct {
	Level      int
	Code       string
	Title      string
	Definition string
	// Line is the 1-based position in the source table, used in build diagnostics.
	Line int
}

// IsOccupation reports whether the row is a leaf (unit group) with a usable code.
func (r ClassificationRow) IsOccupation() bool {
	return r.Level == LevelUnitGroup && r.Code != ""
}

// Tier is the TEER category derived from the second digit of an occupation code.
type Tier struct {
	Level int    `json:"level"`
	Label string `json:"label"`
}

// GroupRef references an ancestor group by code and title.
type GroupRef struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Hierarchy holds the ancestor groups of an occupation.
type Hierarchy struct {
	Broad GroupRef `json:"broad"`
	Major GroupRef `json:"major"`
	Minor GroupRef `json:"minor"`
}

// Occupation is a leaf record of the classification. Records are never mutated after a build.
type Occupation struct {
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ReferenceLink string    `json:"referenceLink"`
	Tier          Tier      `json:"tier"`
	Hierarchy     Hierarchy `json:"hierarchy"`
	// SearchIndex is the lowercased text matched by substring search. Never sent to clients.
	SearchIndex string `json:"-"`
}

// Metadata describes how and when a snapshot was generated.
type Metadata struct {
	Version      string    `json:"version"`
	Source       string    `json:"source"`
	GeneratedAt  time.Time `json:"generatedAt"`
	TotalEntries int       `json:"totalEntries"`
}

// Snapshot is the immutable dataset served by the catalog. Records are sorted by code.
type Snapshot struct {
	Records  []*Occupation `json:"records"`
	Metadata Metadata      `json:"metadata"`
}
