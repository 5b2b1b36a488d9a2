// Command cocktailsgram runs the CocktailsGram site and its maintenance tasks.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/eringen/cocktailsgram"
	"github.com/eringen/cocktailsgram/nav"
)

// version is set at build time via ldflags.
var version = "dev"

// CLI is the command tree. Configuration comes from the environment (and
// .env), the same variables the server reads.
type CLI struct {
	Serve             ServeCmd             `cmd:"" default:"1" help:"Run the web server"`
	ImportIngredients ImportIngredientsCmd `cmd:"" name:"import-ingredients" help:"Import name,measurement_unit rows from a CSV file"`
	AddTag            AddTagCmd            `cmd:"" name:"add-tag" help:"Add a recipe tag"`
	Nav               NavCmd               `cmd:"" help:"Validate and print the navigation menu"`
	Version           VersionCmd           `cmd:"" help:"Print the version"`
}

// ServeCmd starts the HTTP server and shuts it down on SIGINT/SIGTERM.
type ServeCmd struct {
	Addr string `help:"Listen address, overrides ADDR"`
}

func (s *ServeCmd) Run(cfg cocktailsgram.SiteConfig) error {
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = cocktailsgram.MustEnv("SESSION_SECRET")
	}
	app := cocktailsgram.New(cfg)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ImportIngredientsCmd bulk-loads the ingredient catalogue.
type ImportIngredientsCmd struct {
	File string `arg:"" type:"existingfile" help:"CSV file with name,measurement_unit rows"`
}

func (c *ImportIngredientsCmd) Run(cfg cocktailsgram.SiteConfig) error {
	store, err := cocktailsgram.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := store.ImportIngredients(context.Background(), f)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d ingredients\n", n)
	return nil
}

// AddTagCmd creates one tag.
type AddTagCmd struct {
	Name  string `arg:"" help:"Display name"`
	Color string `arg:"" help:"Colour as #rrggbb"`
	Slug  string `help:"URL slug, derived from the name when empty"`
}

func (c *AddTagCmd) Run(cfg cocktailsgram.SiteConfig) error {
	store, err := cocktailsgram.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	t, err := store.CreateTag(cocktailsgram.Tag{Name: c.Name, Slug: c.Slug, Color: c.Color})
	if err != nil {
		return err
	}
	fmt.Printf("created tag %d %s (%s)\n", t.ID, t.Slug, t.Color)
	return nil
}

// NavCmd loads the menu the server would use and prints it as YAML.
type NavCmd struct {
	File string `short:"f" type:"existingfile" help:"Menu YAML file, overrides NAV_CONFIG"`
}

func (c *NavCmd) Run(cfg cocktailsgram.SiteConfig) error {
	path := c.File
	if path == "" {
		path = cfg.NavConfig
	}
	menu := nav.Default
	if path != "" {
		m, err := nav.LoadFile(path)
		if err != nil {
			return err
		}
		menu = m
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(menu); err != nil {
		return err
	}
	return enc.Close()
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Printf("cocktailsgram %s\n", version)
	return nil
}

func main() {
	if err := cocktailsgram.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cocktailsgram"),
		kong.Description("CocktailsGram recipe site"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(cocktailsgram.ConfigFromEnv()))
}
