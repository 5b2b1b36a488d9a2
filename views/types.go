package views

import (
	"time"

	"github.com/eringen/cocktailsgram/nav"
)

// SiteConfig holds site-wide settings populated from environment variables.
type SiteConfig struct {
	Name string // SITE_NAME (default "CocktailsGram")
	URL  string // SITE_URL  (default "http://localhost:3000")
}

// PageMeta carries per-page data every layout needs.
type PageMeta struct {
	SiteName  string
	Title     string
	Path      string // request path, used to mark the active menu item
	User      *User  // nil for anonymous visitors
	Menu      nav.Menu
	CSRFToken string
	Flash     string
	Theme     Theme // zero value means DefaultTheme
}

// Authenticated reports whether the page is rendered for a signed-in user.
func (m PageMeta) Authenticated() bool {
	return m.User != nil
}

// User is a registered account.
type User struct {
	ID        int64
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// Tag labels recipes; Color is a #rrggbb code.
type Tag struct {
	ID    int64
	Name  string
	Slug  string
	Color string
}

// Ingredient is a catalogue entry; (Name, MeasurementUnit) is unique.
type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

// RecipeIngredient is an ingredient with the amount a recipe needs.
type RecipeIngredient struct {
	Ingredient
	Amount int
}

// Recipe is the core content type stored in SQLite and rendered by views.
type Recipe struct {
	ID          int64
	Author      User
	Name        string
	Image       string // path under /media/
	Text        string
	CookingTime int // minutes
	PubDate     time.Time
	Tags        []Tag
	Ingredients []RecipeIngredient

	// Per-viewer flags, false for anonymous visitors.
	IsFavorited bool
	IsInCart    bool
}

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// Subscription is an author the viewer follows, with a preview of their recipes.
type Subscription struct {
	Author       User
	RecipesCount int
	Recipes      []Recipe
}

// RecipePage is one page of a recipe listing.
type RecipePage struct {
	Recipes    []Recipe
	Page       int
	TotalPages int
	ActiveTags []string
}
