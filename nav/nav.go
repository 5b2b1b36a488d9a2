// Package nav holds the site navigation menu: the ordered list of
// destinations shown in the page header, some of them only to signed-in users.
package nav

import (
	"fmt"
	"strings"
)

// MenuEntry is one navigation destination.
type MenuEntry struct {
	Title string `yaml:"title"`
	Href  string `yaml:"href"`
	Auth  bool   `yaml:"auth"` // visible only to authenticated users
}

// Menu is an immutable, ordered list of menu entries.
// The zero value is an empty menu.
type Menu struct {
	entries []MenuEntry
}

var defaultEntries = []MenuEntry{
	{Title: "Рецепты", Href: "/recipes", Auth: false},
	{Title: "Мои подписки", Href: "/subscriptions", Auth: true},
	{Title: "Создать что-то новое", Href: "/recipes/create", Auth: true},
	{Title: "Избранное", Href: "/favorites", Auth: true},
	{Title: "Список ингредиентов", Href: "/cart", Auth: true},
}

// Default is the site menu. It is validated at package init and never
// mutated afterwards.
var Default = MustNew(defaultEntries)

// New copies entries into a Menu after validating them.
func New(entries []MenuEntry) (Menu, error) {
	if err := Validate(entries); err != nil {
		return Menu{}, err
	}
	cp := make([]MenuEntry, len(entries))
	copy(cp, entries)
	return Menu{entries: cp}, nil
}

// MustNew is like New but panics on invalid entries.
func MustNew(entries []MenuEntry) Menu {
	m, err := New(entries)
	if err != nil {
		panic(err)
	}
	return m
}

// Entries returns a copy of the menu in display order.
func (m Menu) Entries() []MenuEntry {
	out := make([]MenuEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m Menu) Len() int {
	return len(m.entries)
}

// Visible returns the entries a visitor may see. Anonymous visitors get only
// the public entries; authenticated visitors get everything. Order is kept.
func (m Menu) Visible(authenticated bool) []MenuEntry {
	out := make([]MenuEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Auth && !authenticated {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Active returns the index into entries of the item matching path, or -1.
// The longest matching href wins, so "/recipes/create" beats "/recipes". A
// root entry "/" matches every path.
func Active(entries []MenuEntry, path string) int {
	path = strings.TrimSuffix(path, "/")
	best, bestLen := -1, -1
	for i, e := range entries {
		href := strings.TrimSuffix(e.Href, "/")
		if path != href && !strings.HasPrefix(path, href+"/") {
			continue
		}
		if len(href) > bestLen {
			best, bestLen = i, len(href)
		}
	}
	return best
}

// ValidationError reports a malformed menu entry.
type ValidationError struct {
	Index int
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "nav: " + e.Msg
	}
	return fmt.Sprintf("nav: entry %d: %s %s", e.Index, e.Field, e.Msg)
}

// Validate checks that every entry has a title and a site-relative href.
func Validate(entries []MenuEntry) error {
	if len(entries) == 0 {
		return &ValidationError{Index: -1, Msg: "menu has no entries"}
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Title) == "" {
			return &ValidationError{Index: i, Field: "title", Msg: "is empty"}
		}
		if e.Href == "" {
			return &ValidationError{Index: i, Field: "href", Msg: "is empty"}
		}
		if !strings.HasPrefix(e.Href, "/") {
			return &ValidationError{Index: i, Field: "href", Msg: fmt.Sprintf("%q must start with /", e.Href)}
		}
	}
	return nil
}
