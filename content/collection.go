package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrNotFound is returned when no record exists for a slug.
var ErrNotFound = errors.New("content: record not found")

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Collection reads typed peak records back out of the flat-file store.
// Every parsed record passes schema validation before it is returned.
type Collection struct {
	dir string
}

// NewCollection creates a Collection over the given content root.
func NewCollection(dir string) *Collection {
	return &Collection{dir: dir}
}

// envelope mirrors the frontmatter schema for parsing.
type envelope struct {
	Title             string    `yaml:"title"`
	Date              string    `yaml:"date"`
	Country           string    `yaml:"country"`
	PeakName          string    `yaml:"peak_name"`
	ElevationM        int       `yaml:"elevation_m"`
	GPSCoords         []float64 `yaml:"gps_coords"`
	DifficultyRating  string    `yaml:"difficulty_rating"`
	AscentType        string    `yaml:"ascent_type"`
	Tags              []string  `yaml:"tags"`
	Slug              string    `yaml:"slug"`
	CoverImage        string    `yaml:"cover_image"`
	ThumbnailImage    string    `yaml:"thumbnail_image"`
	FeaturedImage     string    `yaml:"featured_image"`
	CoverPosition     string    `yaml:"cover_position"`
	ThumbnailPosition string    `yaml:"thumbnail_position"`
	DurationHours     float64   `yaml:"duration_hours"`
	DistanceKm        float64   `yaml:"distance_km"`
	AscentGainM       float64   `yaml:"ascent_gain_m"`
	BestSeason        []string  `yaml:"best_season"`
	GearRequired      []string  `yaml:"gear_required"`
	WaterSources      []string  `yaml:"water_sources"`
	RouteDescription      string `yaml:"route_description"`
	WeatherConsiderations string `yaml:"weather_considerations"`
	PermitsRequired       bool   `yaml:"permits_required"`
	Accommodation         string `yaml:"accommodation"`
	NearestTown           string `yaml:"nearest_town"`
	EmergencyContacts     string `yaml:"emergency_contacts"`
	TrailConditions       string `yaml:"trail_conditions"`
	Description string `yaml:"description"`
	YoutubeURL  string `yaml:"youtubeUrl"`
	ContentHTML string `yaml:"content_html"`
	Featured    bool   `yaml:"featured"`
	Draft       bool   `yaml:"draft"`
}

// Parse decodes a stored document into a validated PeakRecord. fileName is
// the base name of the backing file; a legacy "-draft" suffix marks the
// record as a draft regardless of the frontmatter flag.
func Parse(data []byte, fileName string) (PeakRecord, error) {
	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(data), &env)
	if err != nil {
		return PeakRecord{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	r := PeakRecord{
		Title:             env.Title,
		Date:              env.Date,
		Country:           env.Country,
		PeakName:          env.PeakName,
		ElevationM:        env.ElevationM,
		DifficultyRating:  env.DifficultyRating,
		AscentType:        env.AscentType,
		Tags:              env.Tags,
		Slug:              env.Slug,
		CoverImage:        env.CoverImage,
		ThumbnailImage:    env.ThumbnailImage,
		FeaturedImage:     env.FeaturedImage,
		CoverPosition:     env.CoverPosition,
		ThumbnailPosition: env.ThumbnailPosition,
		DurationHours:     env.DurationHours,
		DistanceKm:        env.DistanceKm,
		AscentGainM:       env.AscentGainM,
		BestSeason:        env.BestSeason,
		GearRequired:      env.GearRequired,
		WaterSources:      env.WaterSources,
		RouteDescription:      env.RouteDescription,
		WeatherConsiderations: env.WeatherConsiderations,
		PermitsRequired:       env.PermitsRequired,
		Accommodation:         env.Accommodation,
		NearestTown:           env.NearestTown,
		EmergencyContacts:     env.EmergencyContacts,
		TrailConditions:       env.TrailConditions,
		Description: env.Description,
		YoutubeURL:  env.YoutubeURL,
		ContentHTML: strings.TrimRight(env.ContentHTML, "\n"),
		Featured:    env.Featured,
		Draft:       env.Draft,
		Body:        strings.TrimSpace(string(body)),
		FileName:    fileName,
	}
	if len(env.GPSCoords) == 2 {
		r.GPSCoords = [2]float64{env.GPSCoords[0], env.GPSCoords[1]}
	}
	base := strings.TrimSuffix(fileName, ".md")
	if strings.HasSuffix(base, "-draft") {
		r.Draft = true
		base = strings.TrimSuffix(base, "-draft")
	}
	if r.Slug == "" {
		r.Slug = base
	}

	if err := ValidateRecord(r); err != nil {
		return PeakRecord{}, fmt.Errorf("invalid record %s: %w", fileName, err)
	}
	return r, nil
}

// ValidateRecord enforces the collection schema on a parsed record.
func ValidateRecord(r PeakRecord) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&r.Date, validation.Required, validation.Match(dateRe).Error("must be YYYY-MM-DD")),
		validation.Field(&r.Country, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&r.PeakName, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&r.ElevationM, validation.Min(0)),
		validation.Field(&r.DifficultyRating, validation.Required, validation.In(toAnys(Difficulties)...)),
		validation.Field(&r.AscentType, validation.Required, validation.In(toAnys(AscentTypes)...)),
		validation.Field(&r.GPSCoords, validation.By(checkGPS)),
	)
}

func toAnys(vals []string) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func checkGPS(value interface{}) error {
	coords, ok := value.([2]float64)
	if !ok {
		return errors.New("must be a [lat, lon] pair")
	}
	if !ValidGPS(coords) {
		return fmt.Errorf("out of range: [%v, %v]", coords[0], coords[1])
	}
	return nil
}

// List returns every valid record in the collection. Files that fail to
// parse or validate are skipped; the write path reports those errors at
// submission time, and a hand-edited broken file must not take the whole
// collection down with it.
func (c *Collection) List() ([]PeakRecord, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	var records []PeakRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		r, err := Parse(data, e.Name())
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// Get returns the record for slug, checking the canonical file name first
// and the legacy draft-suffixed name second.
func (c *Collection) Get(slug string) (PeakRecord, error) {
	for _, name := range []string{slug + ".md", slug + "-draft.md"} {
		data, err := os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return PeakRecord{}, err
		}
		return Parse(data, name)
	}
	return PeakRecord{}, ErrNotFound
}
