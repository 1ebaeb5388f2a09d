package summitlog

import (
	"mime/multipart"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"

	"github.com/summitlog/summitlog/content"
	"github.com/summitlog/summitlog/sanitize"
)

var (
	dateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	elevationRe = regexp.MustCompile(`^\d+$`)
	durationRe  = regexp.MustCompile(`(\d+)`)
)

const defaultPosition = "50,50"

var errInvalidPosition = validation.NewError("position", `must be an "x,y" percentage pair`)

// postForm is a multipart post submission before typing and sanitization.
// Field values are raw strings exactly as submitted.
type postForm struct {
	OriginalSlug string
	Title        string
	Country      string
	Elevation    string
	Date         string
	Description  string
	Difficulty   string
	Duration     string
	Tags         string
	YoutubeURL   string
	Featured     bool
	Content      string
	Draft        bool

	CoverPosition     string
	ThumbnailPosition string

	Cover         *multipart.FileHeader
	Thumbnail     *multipart.FileHeader
	ContentImages []*multipart.FileHeader
}

// extractPostForm reads the multipart submission into a postForm. The update
// flow names a few fields differently (duration_hours, cover_position) and
// signals featured with "on" rather than key presence; both spellings are
// accepted so clients can converge on one.
func extractPostForm(c echo.Context, update bool) (*postForm, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, ValidationError("request must be multipart/form-data")
	}

	value := func(keys ...string) string {
		for _, k := range keys {
			if vs, ok := mf.Value[k]; ok && len(vs) > 0 {
				return vs[0]
			}
		}
		return ""
	}
	file := func(key string) *multipart.FileHeader {
		if fs, ok := mf.File[key]; ok && len(fs) > 0 && fs[0].Size > 0 {
			return fs[0]
		}
		return nil
	}

	f := &postForm{
		OriginalSlug: value("originalSlug"),
		Title:        value("title"),
		Country:      value("country"),
		Elevation:    value("elevation"),
		Date:         value("date"),
		Description:  value("description"),
		Difficulty:   value("difficulty"),
		Duration:     value("duration", "duration_hours"),
		Tags:         value("tags"),
		YoutubeURL:   value("youtubeUrl"),
		Content:      value("content"),
		Draft:        value("isDraft") == "true",

		CoverPosition:     value("coverPosition", "cover_position"),
		ThumbnailPosition: value("thumbnailPosition", "thumbnail_position"),

		Cover:     file("coverImage"),
		Thumbnail: file("thumbnailImage"),
	}
	if update {
		f.Featured = value("featured") == "on"
	} else {
		_, f.Featured = mf.Value["featured"]
	}
	for _, fh := range mf.File["contentImages"] {
		if fh.Size > 0 {
			f.ContentImages = append(f.ContentImages, fh)
		}
	}
	return f, nil
}

// validateCreate enforces the loose create-flow schema: required fields plus
// shape checks, reporting every violation at once.
func (f *postForm) validateCreate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&f.Country, validation.Required),
		validation.Field(&f.Date, validation.Required, validation.Match(dateRe).Error("must be YYYY-MM-DD")),
		validation.Field(&f.Content, validation.Required),
		validation.Field(&f.Elevation, validation.Match(elevationRe).Error("must be a non-negative integer")),
		validation.Field(&f.Difficulty, validation.In(toAnys(content.Difficulties)...)),
		validation.Field(&f.CoverPosition, validation.By(checkPosition)),
		validation.Field(&f.ThumbnailPosition, validation.By(checkPosition)),
	)
}

// validateUpdate enforces the stricter update-flow schema.
func (f *postForm) validateUpdate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.OriginalSlug, validation.Required),
		validation.Field(&f.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&f.Country, validation.Required),
		validation.Field(&f.Elevation, validation.Required, validation.Match(elevationRe).Error("must be a non-negative integer")),
		validation.Field(&f.Date, validation.Required, validation.Match(dateRe).Error("must be YYYY-MM-DD")),
		validation.Field(&f.Difficulty, validation.Required, validation.In(toAnys(content.Difficulties)...)),
		validation.Field(&f.YoutubeURL, is.URL),
		validation.Field(&f.Content, validation.Required),
		validation.Field(&f.CoverPosition, validation.By(checkPosition)),
		validation.Field(&f.ThumbnailPosition, validation.By(checkPosition)),
	)
}

func checkPosition(value interface{}) error {
	s, _ := value.(string)
	if s == "" || content.ValidPosition(s) {
		return nil
	}
	return errInvalidPosition
}

func toAnys(vals []string) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// toRecord types and sanitizes the form into a PeakRecord. Image paths and
// gps coordinates are filled in by the handler afterwards.
func (f *postForm) toRecord() content.PeakRecord {
	title := sanitize.Text(f.Title)

	r := content.PeakRecord{
		Title:            title,
		Date:             f.Date,
		Country:          sanitize.Text(f.Country),
		PeakName:         title,
		DifficultyRating: f.Difficulty,
		AscentType:       "Hike",
		Slug:             content.Slugify(title),
		Description:      sanitize.Text(f.Description),
		YoutubeURL:       f.YoutubeURL,
		ContentHTML:      sanitize.HTML(f.Content),
		Featured:         f.Featured,
		Draft:            f.Draft,
		DurationHours:    parseDuration(f.Duration),
	}
	if f.Elevation != "" {
		r.ElevationM, _ = strconv.Atoi(f.Elevation)
	}
	for _, tag := range SplitCSV(f.Tags) {
		if t := sanitize.Text(tag); t != "" {
			r.Tags = append(r.Tags, t)
		}
	}
	return r
}

// parseDuration turns free-text durations like "6 hours" or "2 days" into
// hours. Day-denominated values count 8 hours per day. Plain numbers such as
// "7.5" pass through as-is. Unparseable input defaults to 6 hours.
func parseDuration(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 6
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	m := durationRe.FindString(s)
	if m == "" {
		return 6
	}
	hours, _ := strconv.ParseFloat(m, 64)
	if strings.Contains(strings.ToLower(s), "day") {
		hours *= 8
	}
	return hours
}
