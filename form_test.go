package summitlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 6},
		{"6 hours", 6},
		{"2 days", 16},
		{"1 Day", 8},
		{"7.5", 7.5},
		{"12", 12},
		{"a while", 6},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseDuration(tc.in), "input %q", tc.in)
	}
}

func TestValidateCreateReportsAllViolations(t *testing.T) {
	f := &postForm{
		Country:   "France",
		Date:      "01-01-2024",
		Content:   "<p>hi</p>",
		Elevation: "not-a-number",
	}
	err := f.validateCreate()
	if assert.Error(t, err) {
		msg := err.Error()
		assert.Contains(t, msg, "cannot be blank")
		assert.Contains(t, msg, "must be YYYY-MM-DD")
		assert.Contains(t, msg, "must be a non-negative integer")
	}
}

func TestValidateUpdateRequiresOriginalSlug(t *testing.T) {
	f := &postForm{
		Title:      "Mont Blanc",
		Country:    "France",
		Elevation:  "4808",
		Date:       "2024-07-01",
		Difficulty: "Hard",
		Content:    "<p>summit</p>",
	}
	err := f.validateUpdate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "OriginalSlug")
	}

	f.OriginalSlug = "mont-blanc"
	assert.NoError(t, f.validateUpdate())
}

func TestValidateUpdateRejectsBadYoutubeURL(t *testing.T) {
	f := &postForm{
		OriginalSlug: "mont-blanc",
		Title:        "Mont Blanc",
		Country:      "France",
		Elevation:    "4808",
		Date:         "2024-07-01",
		Difficulty:   "Hard",
		Content:      "<p>summit</p>",
		YoutubeURL:   "not a url",
	}
	assert.Error(t, f.validateUpdate())

	f.YoutubeURL = "https://youtube.com/watch?v=abc"
	assert.NoError(t, f.validateUpdate())
}

func TestToRecordSanitizesAndTypes(t *testing.T) {
	f := &postForm{
		Title:      "Mont Blanc <script>alert(1)</script>",
		Country:    "France",
		Elevation:  "4808",
		Date:       "2024-07-01",
		Difficulty: "Hard",
		Duration:   "2 days",
		Tags:       "alps, snow , ,glacier",
		Content:    `<p onclick="steal()">summit</p>`,
		Featured:   true,
	}
	r := f.toRecord()

	assert.Equal(t, "Mont Blanc", r.Title)
	assert.Equal(t, "mont-blanc", r.Slug)
	assert.Equal(t, r.Title, r.PeakName)
	assert.Equal(t, 4808, r.ElevationM)
	assert.Equal(t, 16.0, r.DurationHours)
	assert.Equal(t, []string{"alps", "snow", "glacier"}, r.Tags)
	assert.NotContains(t, r.ContentHTML, "onclick")
	assert.Contains(t, r.ContentHTML, "summit")
	assert.True(t, r.Featured)
}

func TestSubstituteDataURLReplacesInOrder(t *testing.T) {
	html := `<p><img src="data:image/png;base64,AAA"/><img src="data:image/jpeg;base64,BBB"/></p>`
	html = substituteDataURL(html, "/images/peaks/x/content-1.png")
	html = substituteDataURL(html, "/images/peaks/x/content-2.jpg")

	assert.NotContains(t, html, "data:image")
	first := `src="/images/peaks/x/content-1.png"`
	second := `src="/images/peaks/x/content-2.jpg"`
	assert.Contains(t, html, first)
	assert.Contains(t, html, second)
	assert.Less(t, strings.Index(html, first), strings.Index(html, second))

	// No placeholders left: further substitutions are no-ops.
	assert.Equal(t, html, substituteDataURL(html, "/images/extra.jpg"))
}
