package views

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// PathEscape wraps url.PathEscape for use in view code.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// RecipeURL returns the canonical path of a recipe page.
func RecipeURL(id int64) string {
	return "/recipes/" + strconv.FormatInt(id, 10) + "/"
}

// UserURL returns the path of an author's page.
func UserURL(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10) + "/"
}

// tagStyle colours a tag pill with the tag's own colour.
func tagStyle(color string) string {
	return "border-color: " + color + "; color: " + color
}

// TagClass returns CSS classes for a tag filter pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag_active"
	}
	return "tag"
}

// toggleTag returns the tag set with slug added or removed, sorted for
// stable URLs.
func toggleTag(active []string, slug string) []string {
	out := make([]string, 0, len(active)+1)
	found := false
	for _, t := range active {
		if t == slug {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, slug)
	}
	return out
}

// listURL builds a listing URL for base with tag filters and page.
func listURL(base string, tags []string, page int) string {
	q := url.Values{}
	for _, t := range tags {
		q.Add("tags", t)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

// IngredientLabel formats an ingredient the way the recipe form submits it.
func IngredientLabel(in Ingredient) string {
	return fmt.Sprintf("%s (%s)", in.Name, in.MeasurementUnit)
}

// ParseIngredientLabel splits a label produced by IngredientLabel.
func ParseIngredientLabel(s string) (name, unit string, ok bool) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, " (")
	if i <= 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	name, unit = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:len(s)-1])
	return name, unit, name != "" && unit != ""
}

var months = [...]string{"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря"}

// pubDate formats a publication date as "2 января 2024".
func pubDate(r Recipe) string {
	if r.PubDate.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", r.PubDate.Day(), months[r.PubDate.Month()-1], r.PubDate.Year())
}

// fullName joins first and last name, falling back to the username.
func fullName(u User) string {
	if n := strings.TrimSpace(u.FirstName + " " + u.LastName); n != "" {
		return n
	}
	return u.Username
}
