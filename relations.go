package cocktailsgram

// AddFavorite marks a recipe as a favourite of userID.
func (s *Store) AddFavorite(userID, recipeID int64) error {
	return s.link(`favorites`, `recipe_id`, userID, recipeID)
}

// RemoveFavorite drops a recipe from userID's favourites.
func (s *Store) RemoveFavorite(userID, recipeID int64) error {
	return s.unlink(`favorites`, `recipe_id`, userID, recipeID)
}

// AddToCart puts a recipe in userID's shopping cart.
func (s *Store) AddToCart(userID, recipeID int64) error {
	return s.link(`cart`, `recipe_id`, userID, recipeID)
}

// RemoveFromCart takes a recipe out of userID's shopping cart.
func (s *Store) RemoveFromCart(userID, recipeID int64) error {
	return s.unlink(`cart`, `recipe_id`, userID, recipeID)
}

// Subscribe makes userID follow authorID.
func (s *Store) Subscribe(userID, authorID int64) error {
	if userID == authorID {
		return ErrSelfSubscribe
	}
	return s.link(`subscriptions`, `author_id`, userID, authorID)
}

// Unsubscribe stops userID following authorID.
func (s *Store) Unsubscribe(userID, authorID int64) error {
	return s.unlink(`subscriptions`, `author_id`, userID, authorID)
}

// IsSubscribed reports whether userID follows authorID.
func (s *Store) IsSubscribed(userID, authorID int64) (bool, error) {
	return s.exists(`SELECT 1 FROM subscriptions WHERE user_id = ? AND author_id = ?`, userID, authorID)
}

// link inserts (user_id, col) into table. The target row must exist.
// table and col are constants from this file, never user input.
func (s *Store) link(table, col string, userID, targetID int64) error {
	target := `recipes`
	if col == `author_id` {
		target = `users`
	}
	ok, err := s.exists(`SELECT 1 FROM `+target+` WHERE id = ?`, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if _, err := s.db.Exec(`INSERT INTO `+table+` (user_id, `+col+`) VALUES (?, ?)`, userID, targetID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) unlink(table, col string, userID, targetID int64) error {
	res, err := s.db.Exec(`DELETE FROM `+table+` WHERE user_id = ? AND `+col+` = ?`, userID, targetID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ShoppingList sums the ingredients of every recipe in userID's cart by
// (name, unit), ordered by name.
func (s *Store) ShoppingList(userID int64) ([]ShoppingItem, error) {
	rows, err := s.db.Query(`
SELECT i.name, i.measurement_unit, SUM(ri.amount)
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
JOIN cart c ON c.recipe_id = ri.recipe_id
WHERE c.user_id = ?
GROUP BY i.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ShoppingItem
	for rows.Next() {
		var it ShoppingItem
		if err := rows.Scan(&it.Name, &it.MeasurementUnit, &it.Amount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	ings := make([]Ingredient, len(items))
	index := make(map[Ingredient]ShoppingItem, len(items))
	for i, it := range items {
		ings[i] = Ingredient{Name: it.Name, MeasurementUnit: it.MeasurementUnit}
		index[ings[i]] = it
	}
	sortIngredients(ings)
	for i, in := range ings {
		items[i] = index[in]
	}
	return items, nil
}

// ListSubscriptions returns one page of the authors userID follows, ordered
// by username, and the total number followed. Each author carries their
// recipe count and up to f.RecipesLimit newest recipes (<= 0 means all).
func (s *Store) ListSubscriptions(userID int64, f SubscriptionFilter) ([]Subscription, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM subscriptions WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := pageBounds(f.Page, f.Limit)
	rows, err := s.db.Query(`
SELECT u.id, u.email, u.username, u.first_name, u.last_name,
       (SELECT COUNT(*) FROM recipes r WHERE r.author_id = u.id)
FROM subscriptions s JOIN users u ON u.id = s.author_id
WHERE s.user_id = ?
ORDER BY u.username
LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		a := &sub.Author
		if err := rows.Scan(&a.ID, &a.Email, &a.Username, &a.FirstName, &a.LastName, &sub.RecipesCount); err != nil {
			rows.Close()
			return nil, 0, err
		}
		subs = append(subs, sub)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range subs {
		recipesLimit := f.RecipesLimit
		if recipesLimit <= 0 {
			recipesLimit = maxPageSize
		}
		recipes, _, err := s.ListRecipes(RecipeFilter{AuthorID: subs[i].Author.ID, Viewer: userID, Limit: recipesLimit})
		if err != nil {
			return nil, 0, err
		}
		subs[i].Recipes = recipes
	}
	return subs, total, nil
}
