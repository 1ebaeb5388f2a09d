package summitlog

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summitlog/summitlog/content"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		SiteName:           "Summitlog Test",
		SiteURL:            "http://example.com",
		Env:                "production",
		ContentDir:         filepath.Join(dir, "peaks"),
		ImageDir:           filepath.Join(dir, "images"),
		AnalyticsEnabled:   false,
		CollectionCacheTTL: time.Minute,
	}
	app := New(cfg, ViewFuncs{})
	require.NoError(t, app.init())
	return app
}

type formFile struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func doRequest(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func createFields(title string) map[string]string {
	return map[string]string{
		"title":      title,
		"country":    "France",
		"elevation":  "4808",
		"date":       "2024-07-01",
		"difficulty": "Hard",
		"duration":   "2 days",
		"tags":       "alps,glacier",
		"content":    "<p>A long day on the ridge.</p>",
		"isDraft":    "false",
	}
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(app, multipartRequest(t, "/api/create-post", createFields("Mont Blanc!!")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "mont-blanc", body["slug"])
	assert.Equal(t, "mont-blanc.md", body["filePath"])

	record, err := content.NewCollection(app.Config.ContentDir).Get("mont-blanc")
	require.NoError(t, err)
	assert.Equal(t, "Mont Blanc", record.Title)
	assert.Equal(t, 4808, record.ElevationM)
	assert.Equal(t, []string{"alps", "glacier"}, record.Tags)
	assert.Equal(t, 16.0, record.DurationHours)
	assert.Contains(t, record.ContentHTML, "A long day on the ridge.")
	assert.False(t, record.Draft)
}

func TestCreatePostValidationErrors(t *testing.T) {
	app := newTestApp(t)

	fields := createFields("Mont Blanc")
	delete(fields, "title")
	fields["date"] = "July 1st"

	rec := doRequest(app, multipartRequest(t, "/api/create-post", fields))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, CodeValidation, body["code"])
	assert.Contains(t, body["message"], "must be YYYY-MM-DD")
	assert.Contains(t, body["message"], "cannot be blank")
}

func TestCreatePostSlugConflict(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(app, multipartRequest(t, "/api/create-post", createFields("Mont Blanc")))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(app, multipartRequest(t, "/api/create-post", createFields("Mont Blanc")))
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, CodeValidation, body["code"])
}

func TestCreatePostDraft(t *testing.T) {
	app := newTestApp(t)

	fields := createFields("Secret Summit")
	fields["isDraft"] = "true"
	rec := doRequest(app, multipartRequest(t, "/api/create-post", fields))
	require.Equal(t, http.StatusOK, rec.Code)

	// Drafts share the canonical file name; draft status lives in frontmatter.
	body := decodeJSON(t, rec)
	assert.Equal(t, "secret-summit.md", body["filePath"])
	assert.Contains(t, body["message"], "saved as draft")

	record, err := content.NewCollection(app.Config.ContentDir).Get("secret-summit")
	require.NoError(t, err)
	assert.True(t, record.Draft)
}

func TestCreatePostWithImages(t *testing.T) {
	app := newTestApp(t)

	fields := createFields("Matterhorn")
	fields["content"] = `<p>summit shot: <img src="data:image/jpeg;base64,AAAA"/></p>`
	fields["coverPosition"] = "30,60"

	rec := doRequest(app, multipartRequest(t, "/api/create-post", fields,
		formFile{"coverImage", "cover.jpg", jpegBytes(t, 600, 400)},
		formFile{"contentImages", "inline.jpg", jpegBytes(t, 20, 20)},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeJSON(t, rec)
	imgs := body["images"].(map[string]interface{})
	assert.Contains(t, imgs["cover"], "/images/peaks/matterhorn/cover-")
	// Thumbnail derived from the cover since none was uploaded.
	assert.Contains(t, imgs["thumbnail"], "/images/peaks/matterhorn/thumbnail-")
	assert.Len(t, imgs["content"], 1)

	record, err := content.NewCollection(app.Config.ContentDir).Get("matterhorn")
	require.NoError(t, err)
	assert.Equal(t, "30,60", record.CoverPosition)
	assert.Equal(t, record.ThumbnailImage, record.FeaturedImage)
	assert.NotContains(t, record.ContentHTML, "data:image")
	assert.Contains(t, record.ContentHTML, "/images/peaks/matterhorn/content-1-")

	// The files really landed on disk.
	saved := app.Images.LocalPath(record.CoverImage)
	_, err = os.Stat(saved)
	assert.NoError(t, err)
}

func TestCreatePostRejectsOversizeImage(t *testing.T) {
	app := newTestApp(t)

	big := make([]byte, 10<<20+1)
	rec := doRequest(app, multipartRequest(t, "/api/create-post", createFields("Eiger"),
		formFile{"coverImage", "cover.jpg", big},
	))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	assert.Contains(t, body["message"], "cover image")
}

func updateFields(originalSlug, title string) map[string]string {
	return map[string]string{
		"originalSlug": originalSlug,
		"title":        title,
		"country":      "France",
		"elevation":    "4808",
		"date":         "2024-07-02",
		"difficulty":   "Expert",
		"content":      "<p>Updated route notes.</p>",
		"isDraft":      "false",
	}
}

func seedRecord(t *testing.T, app *App, r content.PeakRecord) {
	t.Helper()
	_, err := app.Store.Write(r.Slug, content.Serialize(r))
	require.NoError(t, err)
	app.Collection.Invalidate()
}

func TestUpdatePostCarriesForwardGPSAndImages(t *testing.T) {
	app := newTestApp(t)

	seedRecord(t, app, content.PeakRecord{
		Title:            "Mont Blanc",
		Date:             "2024-07-01",
		Country:          "France",
		PeakName:         "Mont Blanc",
		ElevationM:       4808,
		GPSCoords:        [2]float64{45.8326, 6.8652},
		DifficultyRating: "Hard",
		AscentType:       "Climb",
		Tags:             []string{"alps"},
		Slug:             "mont-blanc",
		CoverImage:       "/images/peaks/mont-blanc/cover-1.jpg",
		CoverPosition:    "40,40",
		ThumbnailImage:   "/images/peaks/mont-blanc/thumbnail-1.jpg",
		Body:             "The classic route.",
	})

	rec := doRequest(app, multipartRequest(t, "/api/update-post", updateFields("mont-blanc", "Mont Blanc")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	record, err := content.NewCollection(app.Config.ContentDir).Get("mont-blanc")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{45.8326, 6.8652}, record.GPSCoords)
	assert.Equal(t, "Climb", record.AscentType)
	assert.Equal(t, "/images/peaks/mont-blanc/cover-1.jpg", record.CoverImage)
	assert.Equal(t, "40,40", record.CoverPosition)
	assert.Equal(t, "/images/peaks/mont-blanc/thumbnail-1.jpg", record.ThumbnailImage)
	assert.Equal(t, "Expert", record.DifficultyRating)
	assert.Contains(t, record.ContentHTML, "Updated route notes.")
}

func TestUpdatePostRenameLeavesSingleFile(t *testing.T) {
	app := newTestApp(t)

	seedRecord(t, app, content.PeakRecord{
		Title:            "Old Name",
		Date:             "2024-07-01",
		Country:          "France",
		PeakName:         "Old Name",
		DifficultyRating: "Easy",
		AscentType:       "Hike",
		Slug:             "old-name",
		Body:             "hello",
	})

	rec := doRequest(app, multipartRequest(t, "/api/update-post", updateFields("old-name", "New Name")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	entries, err := os.ReadDir(app.Config.ContentDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new-name.md", entries[0].Name())
}

func TestUpdatePostMissingOriginal(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(app, multipartRequest(t, "/api/update-post", updateFields("no-such-peak", "Nope")))
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, CodeNotFound, body["code"])
}

func TestUploadImage(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(app, multipartRequest(t, "/api/upload-image",
		map[string]string{"type": "content"},
		formFile{"image", "photo.jpg", jpegBytes(t, 10, 10)},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["url"], "/images/content/")
	assert.Contains(t, body["url"], "?t=")
	assert.NotEmpty(t, body["filename"])
}

func TestUploadImageRejectsMissingFile(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(app, multipartRequest(t, "/api/upload-image", map[string]string{"type": "content"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "No image file provided", body["message"])
}

func TestErrorEnvelopeShape(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(app, multipartRequest(t, "/api/create-post", map[string]string{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["code"])
	assert.NotEmpty(t, body["timestamp"])
	// Operational detail stays internal outside development.
	assert.NotContains(t, body, "detail")
}
