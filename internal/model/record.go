// Package model defines the record types produced by the extraction pipeline.
package model

import "strings"

// Property names shared between records and GeoJSON feature properties.
const (
	PropBusinessName     = "Business Name"
	PropAddress          = "Address"
	PropAverageScore     = "Average Score"
	PropHighScore        = "High Score"
	PropTotalInspections = "Total Inspections"
)

// MetadataMap maps a row label to the values collected under it, in document
// order. Labels repeat in the source markup (a multi-line address spans
// several rows), so values accumulate rather than overwrite.
type MetadataMap map[string][]string

// Append adds a value under the given label.
func (m MetadataMap) Append(label, value string) {
	m[label] = append(m[label], value)
}

// Joined returns the values under label joined with single spaces.
func (m MetadataMap) Joined(label string) string {
	return strings.Join(m[label], " ")
}

// ScoreSummary aggregates a restaurant's inspection history.
type ScoreSummary struct {
	AverageScore     float64 `json:"average_score"`
	HighScore        int     `json:"high_score"`
	TotalInspections int     `json:"total_inspections"`
}

// RestaurantRecord is one restaurant's listing metadata merged with its
// score summary. Identity is positional (page order); the PR listing key is
// not carried downstream.
type RestaurantRecord struct {
	Metadata MetadataMap  `json:"metadata"`
	Scores   ScoreSummary `json:"scores"`
}

// Fields merges the metadata values with the score summary into a single
// mapping. Score keys win on collision, which cannot happen with well-formed
// source markup.
func (r RestaurantRecord) Fields() map[string]any {
	out := make(map[string]any, len(r.Metadata)+3)
	for label, values := range r.Metadata {
		out[label] = append([]string(nil), values...)
	}
	out[PropAverageScore] = r.Scores.AverageScore
	out[PropHighScore] = r.Scores.HighScore
	out[PropTotalInspections] = r.Scores.TotalInspections
	return out
}

// Address returns the record's address rows joined into one line. Empty when
// the listing carried no address.
func (r RestaurantRecord) Address() string {
	return strings.TrimSpace(r.Metadata.Joined(PropAddress))
}

// BusinessName returns the record's business name rows joined into one line.
func (r RestaurantRecord) BusinessName() string {
	return strings.TrimSpace(r.Metadata.Joined(PropBusinessName))
}
