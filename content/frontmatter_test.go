package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() PeakRecord {
	return PeakRecord{
		Title:            "Mont Blanc",
		Date:             "2024-07-14",
		Country:          "France",
		PeakName:         "Mont Blanc",
		ElevationM:       4808,
		GPSCoords:        [2]float64{45.8326, 6.8652},
		DifficultyRating: "Hard",
		AscentType:       "Climb",
		Tags:             []string{"alps", "glacier"},
		Slug:             "mont-blanc",
		CoverImage:       "/images/peaks/mont-blanc/cover-1.jpg",
		CoverPosition:    "50,50",
		DurationHours:    12,
		Description:      "The highest peak in the Alps.",
		Featured:         true,
		Draft:            false,
		Body:             "A long day on the Gouter route.",
	}
}

func TestSerializeFieldRules(t *testing.T) {
	doc := string(Serialize(sampleRecord()))

	assert.Contains(t, doc, `title: "Mont Blanc"`)
	assert.Contains(t, doc, "gps_coords: [45.8326, 6.8652]")
	assert.Contains(t, doc, `tags: ["alps", "glacier"]`)
	assert.Contains(t, doc, "elevation_m: 4808")
	assert.Contains(t, doc, "featured: true")
	assert.Contains(t, doc, "draft: false")
	assert.Contains(t, doc, "duration_hours: 12")

	// Unset optionals are omitted, not emitted as null.
	assert.NotContains(t, doc, "thumbnail_image")
	assert.NotContains(t, doc, "youtubeUrl")
	assert.NotContains(t, doc, "distance_km")
	assert.NotContains(t, doc, "content_html")
	assert.NotContains(t, doc, "null")
}

func TestSerializeFieldOrder(t *testing.T) {
	doc := string(Serialize(sampleRecord()))
	titleIdx := strings.Index(doc, "title:")
	dateIdx := strings.Index(doc, "date:")
	gpsIdx := strings.Index(doc, "gps_coords:")
	featuredIdx := strings.Index(doc, "featured:")
	assert.True(t, titleIdx < dateIdx, "title must precede date")
	assert.True(t, dateIdx < gpsIdx, "date must precede gps_coords")
	assert.True(t, gpsIdx < featuredIdx, "gps_coords must precede featured")
}

func TestSerializeBlockLiteral(t *testing.T) {
	r := sampleRecord()
	r.Body = ""
	r.ContentHTML = "<p>Line \"one\"</p>\n<p>Line two</p>"
	doc := string(Serialize(r))

	assert.Contains(t, doc, "content_html: |\n  <p>Line \"one\"</p>\n  <p>Line two</p>")
	assert.Contains(t, doc, htmlPlaceholderBody)
}

func TestRoundTrip(t *testing.T) {
	r := sampleRecord()
	parsed, err := Parse(Serialize(r), "mont-blanc.md")
	require.NoError(t, err)

	assert.Equal(t, r.Title, parsed.Title)
	assert.Equal(t, r.Date, parsed.Date)
	assert.Equal(t, r.Country, parsed.Country)
	assert.Equal(t, r.ElevationM, parsed.ElevationM)
	assert.Equal(t, r.GPSCoords, parsed.GPSCoords)
	assert.Equal(t, r.DifficultyRating, parsed.DifficultyRating)
	assert.Equal(t, r.AscentType, parsed.AscentType)
	assert.Equal(t, r.Tags, parsed.Tags)
	assert.Equal(t, r.Slug, parsed.Slug)
	assert.Equal(t, r.CoverImage, parsed.CoverImage)
	assert.Equal(t, r.CoverPosition, parsed.CoverPosition)
	assert.Equal(t, r.DurationHours, parsed.DurationHours)
	assert.Equal(t, r.Description, parsed.Description)
	assert.Equal(t, r.Featured, parsed.Featured)
	assert.Equal(t, r.Body, parsed.Body)
}

func TestRoundTripContentHTML(t *testing.T) {
	r := sampleRecord()
	r.Body = ""
	r.ContentHTML = "<h2>Route</h2>\n<p>Start early, the couloir gets loose after 10am.</p>"
	parsed, err := Parse(Serialize(r), "mont-blanc.md")
	require.NoError(t, err)
	assert.Equal(t, r.ContentHTML, parsed.ContentHTML)
}

func TestParseLegacyDraftSuffix(t *testing.T) {
	r := sampleRecord()
	parsed, err := Parse(Serialize(r), "mont-blanc-draft.md")
	require.NoError(t, err)
	assert.True(t, parsed.Draft, "legacy -draft file name must mark the record as draft")
}

func TestParseRejectsInvalidSchema(t *testing.T) {
	doc := []byte("---\ntitle: \"X\"\ndate: \"not-a-date\"\ncountry: \"France\"\npeak_name: \"X\"\nelevation_m: 100\ngps_coords: [0, 0]\ndifficulty_rating: \"Vertical\"\nascent_type: \"Hike\"\ntags: []\n---\n\nbody\n")
	_, err := Parse(doc, "x.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be YYYY-MM-DD")
}
