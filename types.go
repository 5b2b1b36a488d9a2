package cocktailsgram

import (
	"database/sql"
	"errors"

	"github.com/eringen/cocktailsgram/views"
)

// Domain types are defined in views so templates and the store share them.
type (
	User             = views.User
	Tag              = views.Tag
	Ingredient       = views.Ingredient
	RecipeIngredient = views.RecipeIngredient
	Recipe           = views.Recipe
	ShoppingItem     = views.ShoppingItem
	Subscription     = views.Subscription
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = sql.ErrNoRows
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("cocktailsgram: already exists")
	// ErrSelfSubscribe is returned when a user tries to follow themselves.
	ErrSelfSubscribe = errors.New("cocktailsgram: cannot subscribe to yourself")
	// ErrInvalidCredentials is returned by Authenticate on a bad email or password.
	ErrInvalidCredentials = errors.New("cocktailsgram: invalid email or password")
	// ErrInvalidRecipe wraps recipe validation failures.
	ErrInvalidRecipe = errors.New("cocktailsgram: invalid recipe")
	// ErrForbidden is returned when a user modifies a recipe they do not own.
	ErrForbidden = errors.New("cocktailsgram: forbidden")
)

// RecipeFilter selects recipes for a listing.
type RecipeFilter struct {
	Tags        []string // tag slugs, any match
	AuthorID    int64
	FavoritedBy int64
	InCartOf    int64
	Viewer      int64 // fills IsFavorited / IsInCart
	Page        int   // 1-based
	Limit       int
}

// SubscriptionFilter pages the subscriptions listing.
type SubscriptionFilter struct {
	Page         int // 1-based
	Limit        int
	RecipesLimit int // recipes previewed per author
}

// RecipeInput is the data needed to create or update a recipe. AuthorID is
// ignored on update.
type RecipeInput struct {
	AuthorID    int64
	Name        string
	Image       string
	Text        string
	CookingTime int
	TagIDs      []int64
	Ingredients []IngredientAmount
}

// IngredientAmount references a catalogue ingredient by ID.
type IngredientAmount struct {
	ID     int64
	Amount int
}

// validationError is a form input error whose message is shown to the user.
type validationError struct {
	msg string
}

func (e validationError) Error() string {
	return e.msg
}
