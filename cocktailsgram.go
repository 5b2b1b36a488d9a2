// Package cocktailsgram is the server-rendered web front of CocktailsGram,
// a recipe-sharing site built with Go, Echo, templ, and gomponents.
//
// It serves the recipe catalogue, user accounts, favourites, the shopping
// cart, and author subscriptions. The navigation menu comes from package nav
// and every page is rendered by package views.
package cocktailsgram

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/eringen/cocktailsgram/nav"
)

// App is the central application. It wires together the store, cache,
// navigation menu, handlers, and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *CatalogueCache

	menu         nav.Menu
	loginLimiter *LoginLimiter
	metrics      *metrics
	customRoutes []func(*App)
	staticDir    string
	initialized  bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, opens the database, loads the menu, and
// registers middleware and routes. Start calls it; tests call it directly
// and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("cocktailsgram: SessionSecret is required")
	}

	// A broken menu must stop the process here, not surface on a page render.
	if a.menu.Len() == 0 {
		if a.Config.NavConfig != "" {
			m, err := nav.LoadFile(a.Config.NavConfig)
			if err != nil {
				return fmt.Errorf("cocktailsgram: load menu: %w", err)
			}
			a.menu = m
		} else {
			a.menu = nav.Default
		}
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("cocktailsgram: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewCatalogueCache(a.Store, a.Config.CacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.metrics = newMetrics()

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and runs the HTTP server until it stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Menu returns the navigation menu in use.
func (a *App) Menu() nav.Menu {
	return a.menu
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded stylesheet first, then the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/styles.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)
	e.Static("/media", a.Config.MediaDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	if a.Config.MetricsEnabled {
		e.GET("/metrics", a.metrics.handler())
	}

	// Public routes
	e.GET("/", handleRootRedirect)
	e.GET("/recipes/", a.handleRecipes)
	e.GET("/recipes/:id/", a.handleRecipe)
	e.GET("/users/:id/", a.handleAuthor)
	e.GET("/ingredients/", a.handleIngredientSearch)

	// Accounts
	e.GET("/login/", a.handleLoginForm)
	e.POST("/login/", a.handleLogin)
	e.GET("/signup/", a.handleSignupForm)
	e.POST("/signup/", a.handleSignup)
	e.POST("/logout/", handleLogout)

	// Everything behind an auth-only menu entry. Route-level middleware
	// keeps unknown paths 404 instead of redirecting to login.
	e.GET("/recipes/create/", a.handleRecipeForm, a.requireAuth)
	e.POST("/recipes/create/", a.handleRecipeCreate, a.requireAuth)
	e.GET("/recipes/:id/edit/", a.handleRecipeEditForm, a.requireAuth)
	e.POST("/recipes/:id/edit/", a.handleRecipeUpdate, a.requireAuth)
	e.POST("/recipes/:id/delete/", a.handleRecipeDelete, a.requireAuth)
	e.POST("/recipes/:id/favorite/", a.handleFavorite(true), a.requireAuth)
	e.POST("/recipes/:id/unfavorite/", a.handleFavorite(false), a.requireAuth)
	e.POST("/recipes/:id/cart/", a.handleCart(true), a.requireAuth)
	e.POST("/recipes/:id/uncart/", a.handleCart(false), a.requireAuth)
	e.GET("/favorites/", a.handleFavorites, a.requireAuth)
	e.GET("/cart/", a.handleCartPage, a.requireAuth)
	e.GET("/cart/download/", a.handleCartDownload, a.requireAuth)
	e.GET("/subscriptions/", a.handleSubscriptions, a.requireAuth)
	e.POST("/users/:id/subscribe/", a.handleSubscribe(true), a.requireAuth)
	e.POST("/users/:id/unsubscribe/", a.handleSubscribe(false), a.requireAuth)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// LoadDotEnv loads variables from .env in the working directory without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cocktailsgram: load .env: %w", err)
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("cocktailsgram: required environment variable %s is not set", key)
	}
	return v
}
