package summitlog

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/summitlog/summitlog/content"
	"github.com/summitlog/summitlog/images"
)

// dataURLRe matches an inline base64 image src as emitted by rich-text
// editors. Saved content images replace these in document order.
var dataURLRe = regexp.MustCompile(`src="data:image/[^"]+"`)

type postImages struct {
	Cover     string   `json:"cover"`
	Thumbnail string   `json:"thumbnail"`
	Content   []string `json:"content"`
}

type postResponse struct {
	Success  bool       `json:"success"`
	Message  string     `json:"message"`
	Slug     string     `json:"slug"`
	FilePath string     `json:"filePath"`
	Images   postImages `json:"images"`
}

func (a *App) handleCreatePost(c echo.Context) error {
	f, err := extractPostForm(c, false)
	if err != nil {
		return err
	}
	if err := f.validateCreate(); err != nil {
		return ValidationError("Validation error: " + err.Error())
	}

	record := f.toRecord()
	if record.Slug == "" {
		return ValidationError("title must contain at least one letter or digit")
	}
	if a.Store.Exists(record.Slug) {
		return ConflictError(fmt.Sprintf("A post with slug %q already exists", record.Slug))
	}

	imgs, err := a.savePostImages(&record, f)
	if err != nil {
		return err
	}

	name, err := a.Store.Write(record.Slug, content.Serialize(record))
	if err != nil {
		return InternalError("Failed to create post. Please try again.", err)
	}
	a.Collection.Invalidate()

	verb := "published"
	if record.Draft {
		verb = "saved as draft"
	}
	return c.JSON(http.StatusOK, postResponse{
		Success:  true,
		Message:  fmt.Sprintf("Adventure %q %s successfully!", record.Title, verb),
		Slug:     record.Slug,
		FilePath: name,
		Images:   imgs,
	})
}

func (a *App) handleUpdatePost(c echo.Context) error {
	f, err := extractPostForm(c, true)
	if err != nil {
		return err
	}
	if err := f.validateUpdate(); err != nil {
		return ValidationError("Validation error: " + err.Error())
	}

	existing, err := a.collection.Get(f.OriginalSlug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return NotFoundError(fmt.Sprintf("No post with slug %q", f.OriginalSlug))
		}
		return InternalError("Failed to update adventure. Please try again.", err)
	}

	record := f.toRecord()
	if record.Slug == "" {
		return ValidationError("title must contain at least one letter or digit")
	}

	// Coordinates are never resubmitted by the editor; carry them forward.
	record.GPSCoords = existing.GPSCoords
	record.AscentType = existing.AscentType

	imgs, err := a.savePostImages(&record, f)
	if err != nil {
		return err
	}

	// Keep the existing images and positions when no replacements came in.
	if record.CoverImage == "" && existing.CoverImage != "" {
		record.CoverImage = existing.CoverImage
		record.CoverPosition = positionOr(f.CoverPosition, positionOr(existing.CoverPosition, defaultPosition))
		imgs.Cover = record.CoverImage
	}
	if record.ThumbnailImage == "" && existing.ThumbnailImage != "" {
		record.ThumbnailImage = existing.ThumbnailImage
		record.FeaturedImage = existing.ThumbnailImage
		record.ThumbnailPosition = positionOr(f.ThumbnailPosition, positionOr(existing.ThumbnailPosition, defaultPosition))
		imgs.Thumbnail = record.ThumbnailImage
	}

	name, err := a.Store.Write(record.Slug, content.Serialize(record))
	if err != nil {
		return InternalError("Failed to update adventure. Please try again.", err)
	}

	// Rename-on-edit: drop the old file only after the new one exists.
	// Removal failure leaves a stale duplicate, which a rescan surfaces.
	if f.OriginalSlug != record.Slug {
		if err := a.Store.Remove(f.OriginalSlug); err != nil {
			c.Logger().Warnf("could not remove old post file for %q: %v", f.OriginalSlug, err)
		}
	}
	a.Collection.Invalidate()

	msg := "Adventure updated successfully!"
	if record.Draft {
		msg = "Draft updated successfully!"
	}
	return c.JSON(http.StatusOK, postResponse{
		Success:  true,
		Message:  msg,
		Slug:     record.Slug,
		FilePath: name,
		Images:   imgs,
	})
}

// savePostImages persists the submitted images under the record's slug and
// fills in the record's media fields. Writes are independent per file:
// a failure on a later image does not undo earlier ones.
func (a *App) savePostImages(record *content.PeakRecord, f *postForm) (postImages, error) {
	var imgs postImages
	imgs.Content = []string{}

	if f.Cover != nil {
		path, err := a.Images.SavePeak(record.Slug, "cover", f.Cover)
		if err != nil {
			return imgs, imageError("cover image", err)
		}
		record.CoverImage = path
		record.CoverPosition = positionOr(f.CoverPosition, defaultPosition)
		imgs.Cover = path
	}

	if f.Thumbnail != nil {
		path, err := a.Images.SavePeak(record.Slug, "thumbnail", f.Thumbnail)
		if err != nil {
			return imgs, imageError("thumbnail image", err)
		}
		record.ThumbnailImage = path
		record.FeaturedImage = path
		record.ThumbnailPosition = positionOr(f.ThumbnailPosition, defaultPosition)
		imgs.Thumbnail = path
	} else if record.CoverImage != "" {
		// No thumbnail supplied: derive one from the cover. Derivation
		// failure is not fatal, the site falls back to the cover.
		if path, err := a.Images.DeriveThumbnail(record.Slug, record.CoverImage); err == nil {
			record.ThumbnailImage = path
			record.FeaturedImage = path
			record.ThumbnailPosition = positionOr(f.ThumbnailPosition, defaultPosition)
			imgs.Thumbnail = path
		}
	}

	for i, fh := range f.ContentImages {
		path, err := a.Images.SavePeak(record.Slug, fmt.Sprintf("content-%d", i+1), fh)
		if err != nil {
			return imgs, imageError(fmt.Sprintf("content image %d", i+1), err)
		}
		imgs.Content = append(imgs.Content, path)
		record.ContentHTML = substituteDataURL(record.ContentHTML, path)
	}

	return imgs, nil
}

// substituteDataURL replaces the first remaining inline data-URL image in
// html with the saved public path. Calling it once per saved image maps the
// Nth image to the Nth placeholder in document order.
func substituteDataURL(html, publicPath string) string {
	loc := dataURLRe.FindStringIndex(html)
	if loc == nil {
		return html
	}
	return html[:loc[0]] + `src="` + publicPath + `"` + html[loc[1]:]
}

func positionOr(pos, fallback string) string {
	if content.ValidPosition(pos) {
		return pos
	}
	return fallback
}

func imageError(what string, err error) error {
	if errors.Is(err, images.ErrInvalid) {
		return ValidationError(fmt.Sprintf("Invalid %s: %v", what, err))
	}
	return InternalError(fmt.Sprintf("Failed to save %s. Please try again.", what), err)
}
