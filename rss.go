package summitlog

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/summitlog/summitlog/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

func (a *App) handleFeed(c echo.Context) error {
	records, err := a.Collection.Published()
	if err != nil {
		return err
	}
	return a.renderRSS(c, records)
}

func (a *App) renderRSS(c echo.Context, records []content.PeakRecord) error {
	base := a.Config.SiteURL
	items := make([]rssItem, 0, len(records))
	for _, r := range records {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", r.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		peakURL := BuildURL(base, "peaks", r.Slug)
		items = append(items, rssItem{
			Title:       r.Title,
			Link:        peakURL,
			Description: r.Description,
			PubDate:     pubDate,
			GUID:        peakURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.SiteName,
			Link:        base,
			Description: a.Config.SiteDescription,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
