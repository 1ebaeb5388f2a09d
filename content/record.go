// Package content implements the flat-file peak content store: the typed
// record model, slug derivation, frontmatter serialization, the collection
// reader, and the file writer.
package content

import (
	"fmt"
	"strconv"
	"strings"
)

// Difficulty ratings accepted by the schema.
var Difficulties = []string{"Easy", "Moderate", "Hard", "Expert"}

// Ascent types accepted by the schema.
var AscentTypes = []string{"Hike", "Climb", "Mixed"}

// PeakRecord is a single adventure entry as persisted in a markdown file
// with YAML frontmatter. Optional string fields use "" for absent, optional
// numeric fields use 0 for absent; absent fields are omitted from the
// serialized frontmatter entirely.
type PeakRecord struct {
	Title            string
	Date             string // YYYY-MM-DD
	Country          string
	PeakName         string
	ElevationM       int
	GPSCoords        [2]float64 // lat, lon
	DifficultyRating string
	AscentType       string
	Tags             []string
	Slug             string

	CoverImage        string
	ThumbnailImage    string
	FeaturedImage     string
	CoverPosition     string // "x,y" percentages
	ThumbnailPosition string

	DurationHours float64
	DistanceKm    float64
	AscentGainM   float64

	BestSeason      []string
	GearRequired    []string
	WaterSources    []string
	RouteDescription      string
	WeatherConsiderations string
	PermitsRequired       bool
	Accommodation         string
	NearestTown           string
	EmergencyContacts     string
	TrailConditions       string

	Description string
	YoutubeURL  string
	ContentHTML string
	Featured    bool
	Draft       bool

	// Body is the markdown body following the frontmatter block. When
	// ContentHTML is set it supersedes Body as the render source and Body
	// holds only a placeholder comment.
	Body string

	// FileName is the backing file the record was read from, set by the
	// collection reader.
	FileName string
}

// ValidGPS reports whether the coordinate pair is within range.
func ValidGPS(coords [2]float64) bool {
	return coords[0] >= -90 && coords[0] <= 90 && coords[1] >= -180 && coords[1] <= 180
}

// ParseGPS parses a "lat,lon" pair. Returns an error if the pair is
// malformed or out of range.
func ParseGPS(s string) ([2]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]float64{}, fmt.Errorf("gps coordinates must be \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return [2]float64{}, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return [2]float64{}, fmt.Errorf("invalid longitude %q", parts[1])
	}
	coords := [2]float64{lat, lon}
	if !ValidGPS(coords) {
		return [2]float64{}, fmt.Errorf("gps coordinates out of range: %v", coords)
	}
	return coords, nil
}

// ValidPosition reports whether s is an "x,y" pair with both values in 0..100.
func ValidPosition(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || n < 0 || n > 100 {
			return false
		}
	}
	return true
}
