package cocktailsgram

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CreateTag adds a tag. Name, slug, and color are each unique.
func (s *Store) CreateTag(t Tag) (Tag, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Slug = strings.TrimSpace(t.Slug)
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	if t.Name == "" || t.Slug == "" {
		return Tag{}, fmt.Errorf("tag name and slug are required")
	}
	if !hexColor.MatchString(t.Color) {
		return Tag{}, fmt.Errorf("tag color %q must be #rrggbb", t.Color)
	}
	res, err := s.db.Exec(`INSERT INTO tags (name, slug, color) VALUES (?, ?, ?)`, t.Name, t.Slug, strings.ToLower(t.Color))
	if err != nil {
		if isUniqueViolation(err) {
			return Tag{}, ErrDuplicate
		}
		return Tag{}, err
	}
	t.ID, err = res.LastInsertId()
	t.Color = strings.ToLower(t.Color)
	return t, err
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags() ([]Tag, error) {
	rows, err := s.db.Query(`SELECT id, name, slug, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Color); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SearchIngredients returns ingredients whose name starts with prefix
// (case-insensitive), ordered by Russian collation. An empty prefix returns
// the whole catalogue. limit <= 0 means no limit.
func (s *Store) SearchIngredients(prefix string, limit int) ([]Ingredient, error) {
	rows, err := s.db.Query(`SELECT id, name, measurement_unit FROM ingredients`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// SQLite's lower() only folds ASCII, so Cyrillic prefixes are matched here.
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []Ingredient
	for rows.Next() {
		var in Ingredient
		if err := rows.Scan(&in.ID, &in.Name, &in.MeasurementUnit); err != nil {
			return nil, err
		}
		if strings.HasPrefix(strings.ToLower(in.Name), prefix) {
			out = append(out, in)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortIngredients(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortIngredients(list []Ingredient) {
	col := collate.New(language.Russian, collate.IgnoreCase)
	sort.SliceStable(list, func(i, j int) bool {
		if c := col.CompareString(list[i].Name, list[j].Name); c != 0 {
			return c < 0
		}
		return list[i].MeasurementUnit < list[j].MeasurementUnit
	})
}

// ImportIngredients reads "name,measurement_unit" rows from r and inserts
// them in one transaction. Rows already in the catalogue are skipped.
// It returns the number of rows inserted.
func (s *Store) ImportIngredients(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO ingredients (name, measurement_unit) VALUES (?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("import ingredients: %w", err)
		}
		name, unit := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if name == "" || unit == "" {
			return 0, fmt.Errorf("import ingredients: line %d: empty field", line)
		}
		res, err := stmt.ExecContext(ctx, name, unit)
		if err != nil {
			return 0, fmt.Errorf("import ingredients: line %d: %w", line, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// FindIngredient returns the catalogue entry with the exact name and unit.
func (s *Store) FindIngredient(name, unit string) (Ingredient, error) {
	var in Ingredient
	err := s.db.QueryRow(`SELECT id, name, measurement_unit FROM ingredients WHERE name = ? AND measurement_unit = ?`,
		strings.TrimSpace(name), strings.TrimSpace(unit)).Scan(&in.ID, &in.Name, &in.MeasurementUnit)
	return in, err
}

// CreateIngredient adds one catalogue entry.
func (s *Store) CreateIngredient(name, unit string) (Ingredient, error) {
	in := Ingredient{Name: strings.TrimSpace(name), MeasurementUnit: strings.TrimSpace(unit)}
	if in.Name == "" || in.MeasurementUnit == "" {
		return Ingredient{}, fmt.Errorf("ingredient name and unit are required")
	}
	res, err := s.db.Exec(`INSERT INTO ingredients (name, measurement_unit) VALUES (?, ?)`, in.Name, in.MeasurementUnit)
	if err != nil {
		if isUniqueViolation(err) {
			return Ingredient{}, ErrDuplicate
		}
		return Ingredient{}, err
	}
	in.ID, err = res.LastInsertId()
	return in, err
}
