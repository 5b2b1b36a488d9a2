package cocktailsgram

import (
	"encoding/xml"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
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

// renderSitemap lists the public pages: the recipe listing and every recipe.
func (a *App) renderSitemap(c echo.Context, recipes []Recipe) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base, "recipes")},
	}
	for _, r := range recipes {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "recipes", strconv.FormatInt(r.ID, 10)),
			LastMod: r.PubDate.Format("2006-01-02"),
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
