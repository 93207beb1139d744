//nolint:revive // Package types provides common type definitions
package types

import "slices"

// SourceID identifies a data source in the reconciliation pipeline.
// It names the upstream provider a record set was scraped or fetched from.
type SourceID string

// String returns the string representation of a source ID.
func (id SourceID) String() string {
	return string(id)
}

// FieldPrefix returns the prefix carried by field names of this source, e.g. "sansad_".
func (id SourceID) FieldPrefix() string {
	return string(id) + "_"
}

// Well-known source identifiers.
const (
	// MyNetaID identifies the MyNeta affidavit tables (winners, assets, cases).
	MyNetaID SourceID = "myneta"

	// SansadID identifies the Sansad member directory API.
	SansadID SourceID = "sansad"
)

// SourceIDs returns the well-known source identifiers.
func SourceIDs() []SourceID {
	return []SourceID{
		MyNetaID,
		SansadID,
	}
}

// IsKnown returns true if the SourceID is one of the well-known constants.
// Unknown IDs are still valid; configured sources may use any identifier.
func (id SourceID) IsKnown() bool {
	return slices.Contains(SourceIDs(), id)
}
