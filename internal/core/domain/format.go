package domain

import (
	"fmt"
	"slices"

	"go.trai.ch/zerr"
)

// Format describes an export file format and how the converter produces it.
type Format struct {
	// ID is the identifier clients use to request the format and that enters the fingerprint.
	ID string
	// Driver is the converter's output driver name (the -f argument).
	Driver string
	// Extension is the artifact file extension, without the dot.
	Extension string
	// ContentType is the media type announced to clients.
	ContentType string
	// NeedsSRS reports whether the spatial reference and geometry type must be detected.
	NeedsSRS bool
	// ExtraArgs are converter arguments every export in this format carries.
	ExtraArgs []string
}

// IsCSV reports whether the format is plain CSV, in which case every column is cast to text.
func (f Format) IsCSV() bool {
	return f.Driver == "CSV"
}

var formats = map[string]Format{
	"csv": {
		ID:          "csv",
		Driver:      "CSV",
		Extension:   "csv",
		ContentType: "text/csv; charset=utf-8",
	},
	"kml": {
		ID:          "kml",
		Driver:      "KML",
		Extension:   "kml",
		ContentType: "application/vnd.google-earth.kml+xml; charset=utf-8",
		NeedsSRS:    true,
	},
	"spatialite": {
		ID:          "spatialite",
		Driver:      "SQLite",
		Extension:   "sqlite",
		ContentType: "application/x-sqlite3",
		NeedsSRS:    true,
		ExtraArgs:   []string{"-dsco", "SPATIALITE=yes"},
	},
	"geopackage": {
		ID:          "geopackage",
		Driver:      "GPKG",
		Extension:   "gpkg",
		ContentType: "application/geopackage+sqlite3",
		NeedsSRS:    true,
	},
}

// LookupFormat returns the format registered under id.
func LookupFormat(id string) (Format, error) {
	f, ok := formats[id]
	if !ok {
		return Format{}, zerr.With(zerr.Wrap(ErrUnknownFormat, fmt.Sprintf("format %q", id)), "format", id)
	}
	return f, nil
}

// FormatIDs returns the identifiers of all supported formats, sorted.
func FormatIDs() []string {
	ids := make([]string, 0, len(formats))
	for id := range formats {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
