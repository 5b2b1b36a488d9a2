package cocktailsgram

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// feedSize is how many of the newest recipes the feed carries.
const feedSize = 20

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
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Author      string   `xml:"author,omitempty"`
	Category    []string `xml:"category"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

func (a *App) handleFeed(c echo.Context) error {
	recipes, _, err := a.Cache.ListRecipes(RecipeFilter{Limit: feedSize})
	if err != nil {
		return err
	}
	return a.renderRSS(c, recipes)
}

// renderRSS writes the newest recipes as an RSS 2.0 feed.
func (a *App) renderRSS(c echo.Context, recipes []Recipe) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(recipes))
	for _, r := range recipes {
		link := BuildURL(base, "recipes", strconv.FormatInt(r.ID, 10))
		item := rssItem{
			Title:       r.Name,
			Link:        link,
			Author:      r.Author.Username,
			Description: r.Text,
			PubDate:     r.PubDate.Format(time.RFC1123Z),
			GUID:        link,
		}
		for _, t := range r.Tags {
			item.Category = append(item.Category, t.Name)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base, "recipes"),
			Description: "Новые рецепты " + a.Config.Name,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
