package summitlog

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/summitlog/summitlog/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	records, err := a.Collection.Published()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, records)
}

func (a *App) renderSitemap(c echo.Context, records []content.PeakRecord) error {
	base := a.Config.SiteURL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, r := range records {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "peaks", r.Slug),
			LastMod: r.Date,
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
