package content

import (
	"strconv"
	"strings"
)

// htmlPlaceholderBody marks files whose authoritative content lives in the
// content_html frontmatter field rather than in the markdown body.
const htmlPlaceholderBody = "<!-- Content is stored in frontmatter as content_html -->"

// Serialize renders the record as a markdown document: a frontmatter block
// followed by the body. Emission rules:
//
//   - numeric arrays (gps_coords) render as unquoted bracketed numbers
//   - string arrays render as bracketed double-quoted strings
//   - scalar strings render double-quoted, numbers and booleans bare
//   - content_html renders as an indented block literal so embedded quotes
//     and newlines survive without escaping
//   - unset optional fields are omitted, not emitted as null
//
// Fields appear in declared order, not sorted.
func Serialize(r PeakRecord) []byte {
	var b strings.Builder
	b.WriteString("---\n")

	writeString(&b, "title", r.Title)
	writeString(&b, "date", r.Date)
	writeString(&b, "country", r.Country)
	writeString(&b, "peak_name", r.PeakName)
	writeInt(&b, "elevation_m", r.ElevationM)
	writeFloatArray(&b, "gps_coords", r.GPSCoords[:])
	writeString(&b, "difficulty_rating", r.DifficultyRating)
	writeString(&b, "ascent_type", r.AscentType)
	writeStringArray(&b, "tags", r.Tags, true)
	writeString(&b, "slug", r.Slug)

	writeOptString(&b, "cover_image", r.CoverImage)
	writeOptString(&b, "thumbnail_image", r.ThumbnailImage)
	writeOptString(&b, "featured_image", r.FeaturedImage)
	writeOptString(&b, "cover_position", r.CoverPosition)
	writeOptString(&b, "thumbnail_position", r.ThumbnailPosition)

	writeOptFloat(&b, "duration_hours", r.DurationHours)
	writeOptFloat(&b, "distance_km", r.DistanceKm)
	writeOptFloat(&b, "ascent_gain_m", r.AscentGainM)

	writeStringArray(&b, "best_season", r.BestSeason, false)
	writeStringArray(&b, "gear_required", r.GearRequired, false)
	writeStringArray(&b, "water_sources", r.WaterSources, false)
	writeOptString(&b, "route_description", r.RouteDescription)
	writeOptString(&b, "weather_considerations", r.WeatherConsiderations)
	if r.PermitsRequired {
		writeBool(&b, "permits_required", true)
	}
	writeOptString(&b, "accommodation", r.Accommodation)
	writeOptString(&b, "nearest_town", r.NearestTown)
	writeOptString(&b, "emergency_contacts", r.EmergencyContacts)
	writeOptString(&b, "trail_conditions", r.TrailConditions)

	writeOptString(&b, "description", r.Description)
	writeOptString(&b, "youtubeUrl", r.YoutubeURL)
	if r.ContentHTML != "" {
		writeBlockLiteral(&b, "content_html", r.ContentHTML)
	}
	writeBool(&b, "featured", r.Featured)
	writeBool(&b, "draft", r.Draft)

	b.WriteString("---\n\n")

	body := r.Body
	if body == "" && r.ContentHTML != "" {
		body = htmlPlaceholderBody
	}
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func writeString(b *strings.Builder, key, val string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(strconv.Quote(val))
	b.WriteString("\n")
}

func writeOptString(b *strings.Builder, key, val string) {
	if val == "" {
		return
	}
	writeString(b, key, val)
}

func writeInt(b *strings.Builder, key string, val int) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(strconv.Itoa(val))
	b.WriteString("\n")
}

func writeBool(b *strings.Builder, key string, val bool) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(strconv.FormatBool(val))
	b.WriteString("\n")
}

func writeOptFloat(b *strings.Builder, key string, val float64) {
	if val == 0 {
		return
	}
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(strconv.FormatFloat(val, 'f', -1, 64))
	b.WriteString("\n")
}

func writeFloatArray(b *strings.Builder, key string, vals []float64) {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	b.WriteString(key)
	b.WriteString(": [")
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("]\n")
}

// writeStringArray emits a bracketed list of quoted strings. When required
// is false an empty slice is omitted entirely; tags always emit, matching
// the stored schema which defaults them to [].
func writeStringArray(b *strings.Builder, key string, vals []string, required bool) {
	if len(vals) == 0 && !required {
		return
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Quote(v)
	}
	b.WriteString(key)
	b.WriteString(": [")
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("]\n")
}

// writeBlockLiteral emits a YAML literal block scalar with two-space
// indentation, preserving embedded newlines and quotes verbatim.
func writeBlockLiteral(b *strings.Builder, key, val string) {
	b.WriteString(key)
	b.WriteString(": |\n")
	for _, line := range strings.Split(val, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
