package summitlog

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// handleUploadImage is the standalone editor upload: one image per request,
// saved outside any post, used by the rich-text editor while composing.
func (a *App) handleUploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil || fh.Size == 0 {
		return ValidationError("No image file provided")
	}

	kind := c.FormValue("type")

	var publicPath, name string
	if kind == "content" {
		publicPath, name, err = a.Images.SaveContent(fh)
	} else {
		publicPath, name, err = a.Images.SaveFlat(fh)
	}
	if err != nil {
		return imageError("image", err)
	}

	// Cache-buster so the editor preview refreshes immediately.
	url := fmt.Sprintf("%s?t=%d", publicPath, time.Now().Unix())
	return c.JSON(http.StatusOK, uploadResponse{Success: true, URL: url, Filename: name})
}
