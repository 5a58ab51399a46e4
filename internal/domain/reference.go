package domain

import "time"

// ReferenceData is one immutable snapshot of both datasets. A snapshot is
// never modified after construction; reloads build a new one.
type ReferenceData struct {
	Rainfall RainfallTable
	Catalog  Catalog
	Version  string
	LoadedAt time.Time
}

// NewReferenceData bundles the datasets into a snapshot. The catalog is
// copied so later changes to the caller's slice cannot leak in.
func NewReferenceData(rainfall RainfallTable, catalog Catalog, version string) *ReferenceData {
	rainfall.Records = append([]RainfallRecord(nil), rainfall.Records...)
	return &ReferenceData{
		Rainfall: rainfall,
		Catalog:  append(Catalog(nil), catalog...),
		Version:  version,
		LoadedAt: clock.Now(),
	}
}
