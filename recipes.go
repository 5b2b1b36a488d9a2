package cocktailsgram

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// pubDateLayout is fixed width so pub_date sorts lexically.
	pubDateLayout = "2006-01-02 15:04:05.000000"

	defaultPageSize = 6
	maxPageSize     = 100

	maxRecipeName = 200
	maxRecipeText = 500
)

const recipeColumns = `r.id, r.name, r.image, r.text, r.cooking_time, r.pub_date,
	u.id, u.email, u.username, u.first_name, u.last_name`

func validateRecipe(in RecipeInput) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidRecipe, fmt.Sprintf(format, args...))
	}
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalid("name is required")
	case utf8.RuneCountInString(in.Name) > maxRecipeName:
		return invalid("name is longer than %d characters", maxRecipeName)
	case strings.TrimSpace(in.Text) == "":
		return invalid("description is required")
	case utf8.RuneCountInString(in.Text) > maxRecipeText:
		return invalid("description is longer than %d characters", maxRecipeText)
	case in.CookingTime < 1:
		return invalid("cooking time must be at least 1 minute")
	case in.Image == "":
		return invalid("image is required")
	case len(in.TagIDs) == 0:
		return invalid("at least one tag is required")
	case len(in.Ingredients) == 0:
		return invalid("at least one ingredient is required")
	}
	seenTags := make(map[int64]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seenTags[id] {
			return invalid("tags must not repeat")
		}
		seenTags[id] = true
	}
	seenIngredients := make(map[int64]bool, len(in.Ingredients))
	for _, ia := range in.Ingredients {
		if seenIngredients[ia.ID] {
			return invalid("ingredients must not repeat")
		}
		seenIngredients[ia.ID] = true
		if ia.Amount < 1 {
			return invalid("ingredient amount must be at least 1")
		}
	}
	return nil
}

// CreateRecipe validates and stores a new recipe with its tags and ingredients.
func (s *Store) CreateRecipe(in RecipeInput) (int64, error) {
	if err := validateRecipe(in); err != nil {
		return 0, err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO recipes (author_id, name, image, text, cooking_time, pub_date) VALUES (?, ?, ?, ?, ?, ?)`,
		in.AuthorID, strings.TrimSpace(in.Name), in.Image, strings.TrimSpace(in.Text), in.CookingTime,
		time.Now().UTC().Format(pubDateLayout))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := insertRecipeLinks(tx, id, in); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateRecipe replaces the fields, tags, and ingredients of a recipe owned
// by userID. The author and publication date are kept.
func (s *Store) UpdateRecipe(id, userID int64, in RecipeInput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var author int64
	if err := tx.QueryRow(`SELECT author_id FROM recipes WHERE id = ?`, id).Scan(&author); err != nil {
		return err
	}
	if author != userID {
		return ErrForbidden
	}
	if err := validateRecipe(in); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE recipes SET name = ?, image = ?, text = ?, cooking_time = ? WHERE id = ?`,
		strings.TrimSpace(in.Name), in.Image, strings.TrimSpace(in.Text), in.CookingTime, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM recipe_tags WHERE recipe_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, id); err != nil {
		return err
	}
	if err := insertRecipeLinks(tx, id, in); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRecipeLinks(tx *sql.Tx, id int64, in RecipeInput) error {
	for _, tagID := range in.TagIDs {
		if _, err := tx.Exec(`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`, id, tagID); err != nil {
			return fmt.Errorf("%w: unknown tag %d", ErrInvalidRecipe, tagID)
		}
	}
	for _, ia := range in.Ingredients {
		if _, err := tx.Exec(`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES (?, ?, ?)`, id, ia.ID, ia.Amount); err != nil {
			return fmt.Errorf("%w: unknown ingredient %d", ErrInvalidRecipe, ia.ID)
		}
	}
	return nil
}

// DeleteRecipe removes a recipe owned by userID.
func (s *Store) DeleteRecipe(id, userID int64) error {
	var author int64
	if err := s.db.QueryRow(`SELECT author_id FROM recipes WHERE id = ?`, id).Scan(&author); err != nil {
		return err
	}
	if author != userID {
		return ErrForbidden
	}
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	return err
}

// GetRecipe returns a recipe with tags and ingredients. viewer (0 for
// anonymous) fills the favourite and cart flags.
func (s *Store) GetRecipe(id, viewer int64) (Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeColumns+` FROM recipes r JOIN users u ON u.id = r.author_id WHERE r.id = ?`, id)
	r, err := scanRecipe(row)
	if err != nil {
		return Recipe{}, err
	}
	if err := s.fillRecipe(&r, viewer); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// ListRecipes returns one page of recipes matching f, newest first, and the
// total number of matches.
func (s *Store) ListRecipes(f RecipeFilter) ([]Recipe, int, error) {
	var where []string
	var args []any
	if len(f.Tags) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(f.Tags)), ",")
		where = append(where, `r.id IN (SELECT rt.recipe_id FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE t.slug IN (`+ph+`))`)
		for _, slug := range f.Tags {
			args = append(args, slug)
		}
	}
	if f.AuthorID != 0 {
		where = append(where, `r.author_id = ?`)
		args = append(args, f.AuthorID)
	}
	if f.FavoritedBy != 0 {
		where = append(where, `r.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)`)
		args = append(args, f.FavoritedBy)
	}
	if f.InCartOf != 0 {
		where = append(where, `r.id IN (SELECT recipe_id FROM cart WHERE user_id = ?)`)
		args = append(args, f.InCartOf)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM recipes r`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	args = append(args, limit, offset)

	rows, err := s.db.Query(`SELECT `+recipeColumns+` FROM recipes r JOIN users u ON u.id = r.author_id`+
		clause+` ORDER BY r.pub_date DESC, r.id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	var recipes []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		recipes = append(recipes, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range recipes {
		if err := s.fillRecipe(&recipes[i], f.Viewer); err != nil {
			return nil, 0, err
		}
	}
	return recipes, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (Recipe, error) {
	var r Recipe
	var pubDate string
	err := row.Scan(&r.ID, &r.Name, &r.Image, &r.Text, &r.CookingTime, &pubDate,
		&r.Author.ID, &r.Author.Email, &r.Author.Username, &r.Author.FirstName, &r.Author.LastName)
	if err != nil {
		return Recipe{}, err
	}
	r.PubDate, _ = time.Parse(pubDateLayout, pubDate)
	return r, nil
}

// fillRecipe loads tags, ingredients, and viewer flags. It must not be called
// while another result set is open on a single-connection pool.
func (s *Store) fillRecipe(r *Recipe, viewer int64) error {
	tags, err := s.db.Query(`SELECT t.id, t.name, t.slug, t.color FROM tags t JOIN recipe_tags rt ON rt.tag_id = t.id WHERE rt.recipe_id = ? ORDER BY t.name`, r.ID)
	if err != nil {
		return err
	}
	r.Tags = nil
	for tags.Next() {
		var t Tag
		if err := tags.Scan(&t.ID, &t.Name, &t.Slug, &t.Color); err != nil {
			tags.Close()
			return err
		}
		r.Tags = append(r.Tags, t)
	}
	tags.Close()
	if err := tags.Err(); err != nil {
		return err
	}

	ings, err := s.db.Query(`SELECT i.id, i.name, i.measurement_unit, ri.amount FROM ingredients i JOIN recipe_ingredients ri ON ri.ingredient_id = i.id WHERE ri.recipe_id = ?`, r.ID)
	if err != nil {
		return err
	}
	r.Ingredients = nil
	for ings.Next() {
		var ri RecipeIngredient
		if err := ings.Scan(&ri.ID, &ri.Name, &ri.MeasurementUnit, &ri.Amount); err != nil {
			ings.Close()
			return err
		}
		r.Ingredients = append(r.Ingredients, ri)
	}
	ings.Close()
	if err := ings.Err(); err != nil {
		return err
	}

	if viewer == 0 {
		r.IsFavorited, r.IsInCart = false, false
		return nil
	}
	if r.IsFavorited, err = s.exists(`SELECT 1 FROM favorites WHERE user_id = ? AND recipe_id = ?`, viewer, r.ID); err != nil {
		return err
	}
	r.IsInCart, err = s.exists(`SELECT 1 FROM cart WHERE user_id = ? AND recipe_id = ?`, viewer, r.ID)
	return err
}

// pageBounds clamps a 1-based page and a page size into LIMIT and OFFSET
// values.
func pageBounds(page, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// TotalPages returns the page count for total items at the given page size.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if total == 0 {
		return 1
	}
	return (total + limit - 1) / limit
}
