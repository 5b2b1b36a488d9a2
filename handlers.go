package cocktailsgram

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/cocktailsgram/views"
)

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/recipes/")
}

// listQuery reads the tag filter and page number shared by every listing.
func listQuery(c echo.Context) (tags []string, page int) {
	tags = FilterEmpty(c.QueryParams()["tags"])
	page = queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	return tags, page
}

func (a *App) handleRecipes(c echo.Context) error {
	tags, page := listQuery(c)
	f := RecipeFilter{Tags: tags, Page: page, Viewer: sessionUserID(c)}
	if author := queryInt(c, "author", 0); author > 0 {
		f.AuthorID = int64(author)
	}
	recipes, total, err := a.Cache.ListRecipes(f)
	if err != nil {
		return err
	}
	allTags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	p := views.RecipePage{Recipes: recipes, Page: page, TotalPages: TotalPages(total, defaultPageSize), ActiveTags: tags}
	return Render(c, views.Recipes(a.pageMeta(c, "Рецепты"), p, allTags))
}

func (a *App) handleRecipe(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	viewer := sessionUserID(c)
	r, err := a.Store.GetRecipe(id, viewer)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	subscribed := false
	if viewer != 0 && viewer != r.Author.ID {
		if subscribed, err = a.Store.IsSubscribed(viewer, r.Author.ID); err != nil {
			return err
		}
	}
	return Render(c, views.RecipeDetail(a.pageMeta(c, r.Name), r, subscribed))
}

func (a *App) renderRecipeForm(c echo.Context, code int, v views.RecipeFormValues, formErr string) error {
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	catalogue, err := a.Store.SearchIngredients("", 0)
	if err != nil {
		return err
	}
	return RenderStatus(c, code, views.RecipeForm(a.pageMeta(c, v.Title()), tags, catalogue, v, formErr))
}

func (a *App) handleRecipeForm(c echo.Context) error {
	return a.renderRecipeForm(c, http.StatusOK, views.RecipeFormValues{}, "")
}

// readRecipeForm parses the fields shared by the create and edit forms into
// v and a RecipeInput without the image. A non-empty msg is a problem to show
// to the user.
func (a *App) readRecipeForm(c echo.Context, v *views.RecipeFormValues) (in RecipeInput, msg string, err error) {
	v.Name = c.FormValue("name")
	v.Text = c.FormValue("text")
	v.CookingTime = c.FormValue("cooking_time")
	v.TagIDs = map[int64]bool{}
	v.Ingredients = nil
	form, err := c.FormParams()
	if err != nil {
		return in, "", echo.NewHTTPError(http.StatusBadRequest, "malformed form")
	}
	in = RecipeInput{
		AuthorID: sessionUserID(c),
		Name:     v.Name,
		Text:     v.Text,
	}
	in.CookingTime, _ = strconv.Atoi(strings.TrimSpace(v.CookingTime))
	for _, raw := range form["tags"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if !v.TagIDs[id] {
			in.TagIDs = append(in.TagIDs, id)
		}
		v.TagIDs[id] = true
	}

	labels, amounts := form["ingredient"], form["amount"]
	for i, label := range labels {
		amount := ""
		if i < len(amounts) {
			amount = strings.TrimSpace(amounts[i])
		}
		if strings.TrimSpace(label) == "" && amount == "" {
			continue
		}
		v.Ingredients = append(v.Ingredients, views.IngredientRow{Label: label, Amount: amount})
	}
	for _, row := range v.Ingredients {
		name, unit, ok := views.ParseIngredientLabel(row.Label)
		if !ok {
			return in, "Выберите ингредиент из списка: " + row.Label, nil
		}
		ing, err := a.Store.FindIngredient(name, unit)
		if errors.Is(err, ErrNotFound) {
			return in, "Неизвестный ингредиент: " + row.Label, nil
		}
		if err != nil {
			return in, "", err
		}
		n, err := strconv.Atoi(row.Amount)
		if err != nil || n < 1 {
			return in, "Количество должно быть не меньше 1: " + row.Label, nil
		}
		in.Ingredients = append(in.Ingredients, IngredientAmount{ID: ing.ID, Amount: n})
	}
	return in, "", nil
}

func (a *App) handleRecipeCreate(c echo.Context) error {
	var v views.RecipeFormValues
	badRequest := func(msg string) error {
		return a.renderRecipeForm(c, http.StatusBadRequest, v, msg)
	}
	in, msg, err := a.readRecipeForm(c, &v)
	if err != nil {
		return err
	}
	if msg != "" {
		return badRequest(msg)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return badRequest("Загрузите фото рецепта")
	}
	imageName, data, err := readRecipeImage(file)
	if err != nil {
		return badRequest("Не удалось прочитать фото: " + err.Error())
	}
	in.Image = mediaURL(imageName)

	// Validate before touching the disk so a rejected form leaves no file.
	if err := validateRecipe(in); err != nil {
		return badRequest(recipeErrorText(err))
	}
	if err := a.saveRecipeImage(imageName, data); err != nil {
		return err
	}
	id, err := a.Store.CreateRecipe(in)
	if err != nil {
		a.removeRecipeImage(imageName)
		if errors.Is(err, ErrInvalidRecipe) {
			return badRequest(recipeErrorText(err))
		}
		return err
	}
	a.Cache.Invalidate()
	a.metrics.recipesCreated.Inc()
	addFlash(c, "Рецепт опубликован")
	return c.Redirect(http.StatusSeeOther, views.RecipeURL(id))
}

// ownRecipe loads the recipe named by the :id parameter and checks that the
// signed-in user wrote it.
func (a *App) ownRecipe(c echo.Context) (Recipe, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Recipe{}, err
	}
	r, err := a.Store.GetRecipe(id, 0)
	if errors.Is(err, ErrNotFound) {
		return Recipe{}, echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return Recipe{}, err
	}
	if r.Author.ID != sessionUserID(c) {
		return Recipe{}, echo.NewHTTPError(http.StatusForbidden, "only the author can edit this recipe")
	}
	return r, nil
}

func (a *App) handleRecipeEditForm(c echo.Context) error {
	r, err := a.ownRecipe(c)
	if err != nil {
		return err
	}
	v := views.RecipeFormValues{
		Action:      views.RecipeURL(r.ID) + "edit/",
		Image:       r.Image,
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: strconv.Itoa(r.CookingTime),
		TagIDs:      make(map[int64]bool, len(r.Tags)),
	}
	for _, t := range r.Tags {
		v.TagIDs[t.ID] = true
	}
	for _, ri := range r.Ingredients {
		v.Ingredients = append(v.Ingredients, views.IngredientRow{
			Label:  views.IngredientLabel(ri.Ingredient),
			Amount: strconv.Itoa(ri.Amount),
		})
	}
	return a.renderRecipeForm(c, http.StatusOK, v, "")
}

// handleRecipeUpdate saves the edit form. Without a new photo the current
// one is kept; a replaced photo is removed from disk after the save.
func (a *App) handleRecipeUpdate(c echo.Context) error {
	r, err := a.ownRecipe(c)
	if err != nil {
		return err
	}
	v := views.RecipeFormValues{Action: views.RecipeURL(r.ID) + "edit/", Image: r.Image}
	badRequest := func(msg string) error {
		return a.renderRecipeForm(c, http.StatusBadRequest, v, msg)
	}
	in, msg, err := a.readRecipeForm(c, &v)
	if err != nil {
		return err
	}
	if msg != "" {
		return badRequest(msg)
	}

	in.Image = r.Image
	var imageName string
	var data []byte
	file, err := c.FormFile("image")
	switch {
	case err == nil:
		if imageName, data, err = readRecipeImage(file); err != nil {
			return badRequest("Не удалось прочитать фото: " + err.Error())
		}
		in.Image = mediaURL(imageName)
	case !errors.Is(err, http.ErrMissingFile):
		return badRequest("Не удалось прочитать фото")
	}

	if err := validateRecipe(in); err != nil {
		return badRequest(recipeErrorText(err))
	}
	if imageName != "" {
		if err := a.saveRecipeImage(imageName, data); err != nil {
			return err
		}
	}
	if err := a.Store.UpdateRecipe(r.ID, sessionUserID(c), in); err != nil {
		if imageName != "" {
			a.removeRecipeImage(imageName)
		}
		switch {
		case errors.Is(err, ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "only the author can edit this recipe")
		case errors.Is(err, ErrInvalidRecipe):
			return badRequest(recipeErrorText(err))
		}
		return err
	}
	if imageName != "" {
		a.removeRecipeImage(strings.TrimPrefix(r.Image, "/media/"))
	}
	a.Cache.Invalidate()
	addFlash(c, "Рецепт обновлён")
	return c.Redirect(http.StatusSeeOther, views.RecipeURL(r.ID))
}

func recipeErrorText(err error) string {
	return "Проверьте рецепт: " + strings.TrimPrefix(err.Error(), ErrInvalidRecipe.Error()+": ")
}

func (a *App) handleRecipeDelete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	r, err := a.Store.GetRecipe(id, 0)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	switch err := a.Store.DeleteRecipe(id, sessionUserID(c)); {
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "only the author can delete this recipe")
	case err != nil:
		return err
	}
	a.removeRecipeImage(strings.TrimPrefix(r.Image, "/media/"))
	a.Cache.Invalidate()
	addFlash(c, "Рецепт удалён")
	return c.Redirect(http.StatusSeeOther, "/recipes/")
}

// redirectBack returns the visitor to the page the form was posted from.
// Only the path and query of the Referer are used, so it never leaves the site.
func redirectBack(c echo.Context, fallback string) error {
	if ref, err := url.Parse(c.Request().Referer()); err == nil && strings.HasPrefix(ref.Path, "/") {
		target := ref.Path
		if ref.RawQuery != "" {
			target += "?" + ref.RawQuery
		}
		return c.Redirect(http.StatusSeeOther, target)
	}
	return c.Redirect(http.StatusSeeOther, fallback)
}

// relationHandler builds the POST handler for one add/remove toggle. The
// add and remove funcs are Store methods taking (userID, targetID).
func (a *App) relationHandler(kind string, add bool, fn func(userID, targetID int64) error, duplicate string, fallback func(id int64) string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		err = fn(sessionUserID(c), id)
		switch {
		case errors.Is(err, ErrSelfSubscribe):
			addFlash(c, "Нельзя подписаться на самого себя")
		case errors.Is(err, ErrDuplicate):
			addFlash(c, duplicate)
		case errors.Is(err, ErrNotFound):
			if add {
				return echo.NewHTTPError(http.StatusNotFound)
			}
		case err != nil:
			return err
		default:
			a.metrics.relationChanged(kind, add)
		}
		return redirectBack(c, fallback(id))
	}
}

func (a *App) handleFavorite(add bool) echo.HandlerFunc {
	fn := a.Store.RemoveFavorite
	if add {
		fn = a.Store.AddFavorite
	}
	return a.relationHandler("favorite", add, fn, "Рецепт уже в избранном", views.RecipeURL)
}

func (a *App) handleCart(add bool) echo.HandlerFunc {
	fn := a.Store.RemoveFromCart
	if add {
		fn = a.Store.AddToCart
	}
	return a.relationHandler("cart", add, fn, "Рецепт уже в списке покупок", views.RecipeURL)
}

func (a *App) handleSubscribe(add bool) echo.HandlerFunc {
	fn := a.Store.Unsubscribe
	if add {
		fn = a.Store.Subscribe
	}
	return a.relationHandler("subscription", add, fn, "Вы уже подписаны на этого автора", func(int64) string {
		return "/subscriptions/"
	})
}

func (a *App) handleFavorites(c echo.Context) error {
	uid := sessionUserID(c)
	tags, page := listQuery(c)
	recipes, total, err := a.Store.ListRecipes(RecipeFilter{Tags: tags, Page: page, FavoritedBy: uid, Viewer: uid})
	if err != nil {
		return err
	}
	allTags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	p := views.RecipePage{Recipes: recipes, Page: page, TotalPages: TotalPages(total, defaultPageSize), ActiveTags: tags}
	return Render(c, views.Favorites(a.pageMeta(c, "Избранное"), p, allTags))
}

func (a *App) handleCartPage(c echo.Context) error {
	uid := sessionUserID(c)
	recipes, _, err := a.Store.ListRecipes(RecipeFilter{InCartOf: uid, Viewer: uid, Limit: maxPageSize})
	if err != nil {
		return err
	}
	items, err := a.Store.ShoppingList(uid)
	if err != nil {
		return err
	}
	return Render(c, views.Cart(a.pageMeta(c, "Список покупок"), recipes, items))
}

func (a *App) handleCartDownload(c echo.Context) error {
	items, err := a.Store.ShoppingList(sessionUserID(c))
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("Shopping list:\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s - %d %s\n", it.Name, it.Amount, it.MeasurementUnit)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="shopping_cart.txt"`)
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, []byte(b.String()))
}

func (a *App) handleSubscriptions(c echo.Context) error {
	_, page := listQuery(c)
	f := SubscriptionFilter{
		Page:         page,
		Limit:        queryInt(c, "limit", defaultPageSize),
		RecipesLimit: queryInt(c, "recipes_limit", 3),
	}
	subs, total, err := a.Store.ListSubscriptions(sessionUserID(c), f)
	if err != nil {
		return err
	}
	limit, _ := pageBounds(f.Page, f.Limit)
	p := views.RecipePage{Page: page, TotalPages: TotalPages(total, limit)}
	return Render(c, views.Subscriptions(a.pageMeta(c, "Мои подписки"), subs, p))
}

// handleAuthor lists one author's recipes with a follow button.
func (a *App) handleAuthor(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	author, err := a.Store.GetUser(id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	viewer := sessionUserID(c)
	tags, page := listQuery(c)
	recipes, total, err := a.Store.ListRecipes(RecipeFilter{Tags: tags, AuthorID: id, Page: page, Viewer: viewer})
	if err != nil {
		return err
	}
	allTags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	subscribed := false
	if viewer != 0 && viewer != id {
		if subscribed, err = a.Store.IsSubscribed(viewer, id); err != nil {
			return err
		}
	}
	p := views.RecipePage{Recipes: recipes, Page: page, TotalPages: TotalPages(total, defaultPageSize), ActiveTags: tags}
	title := strings.TrimSpace(author.FirstName + " " + author.LastName)
	if title == "" {
		title = author.Username
	}
	return Render(c, views.Author(a.pageMeta(c, title), author, p, allTags, subscribed))
}

type ingredientJSON struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// handleIngredientSearch backs the ingredient picker of the recipe form.
func (a *App) handleIngredientSearch(c echo.Context) error {
	found, err := a.Store.SearchIngredients(c.QueryParam("name"), 50)
	if err != nil {
		return err
	}
	out := make([]ingredientJSON, 0, len(found))
	for _, in := range found {
		out = append(out, ingredientJSON{ID: in.ID, Name: in.Name, MeasurementUnit: in.MeasurementUnit})
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	for _, e := range a.menu.Entries() {
		if e.Auth {
			fmt.Fprintf(&b, "Disallow: %s\n", e.Href)
		}
	}
	b.WriteString("Disallow: /login/\nDisallow: /signup/\n")
	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", strings.TrimRight(a.Config.URL, "/"))
	return c.String(http.StatusOK, b.String())
}

func (a *App) handleSitemap(c echo.Context) error {
	var all []Recipe
	for page := 1; ; page++ {
		recipes, total, err := a.Store.ListRecipes(RecipeFilter{Page: page, Limit: maxPageSize})
		if err != nil {
			return err
		}
		all = append(all, recipes...)
		if len(recipes) == 0 || len(all) >= total {
			break
		}
	}
	return a.renderSitemap(c, all)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.pageMeta(c, "")))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError(a.pageMeta(c, "")))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
