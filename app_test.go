package cocktailsgram

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/cocktailsgram/nav"
	"github.com/eringen/cocktailsgram/views"
)

const footerHTML = `<footer class="footer"><div class="footer__container"><a href="https://cocktailsgram.ddns.net/recipes" title="© 2024 CocktailsGram" class="footer__brand">© 2024 CocktailsGram</a></div></footer>`

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	dir := t.TempDir()
	app := New(SiteConfig{
		URL:           "https://cocktails.example",
		DatabasePath:  filepath.Join(dir, "test.db"),
		MediaDir:      filepath.Join(dir, "media"),
		SessionSecret: "test-session-secret-0123456789abcdef",
		CacheTTL:      time.Minute,
	}, append([]Option{WithStaticDir(dir)}, opts...)...)
	require.NoError(t, app.Init())
	t.Cleanup(func() { app.Close() })
	return app
}

// client drives the app in-process and keeps cookies between requests.
type client struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app *App) *client {
	return &client{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// csrf returns the token, fetching a page first if no cookie is held yet.
func (c *client) csrf() string {
	if ck, ok := c.cookies["_csrf"]; ok {
		return ck.Value
	}
	c.get("/recipes/")
	ck, ok := c.cookies["_csrf"]
	require.True(c.t, ok, "csrf cookie not set")
	return ck.Value
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", c.csrf())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) signup(username string) {
	c.t.Helper()
	rec := c.post("/signup/", url.Values{
		"email":      {username + "@example.com"},
		"username":   {username},
		"first_name": {"Иван"},
		"last_name":  {"Петров"},
		"password":   {"password123"},
	})
	require.Equal(c.t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func TestRecipesPageAnonymous(t *testing.T) {
	app := newTestApp(t)
	rec := newClient(t, app).get("/recipes/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, footerHTML)
	assert.Contains(t, body, `href="/recipes"`)
	assert.NotContains(t, body, `href="/favorites"`)
	assert.NotContains(t, body, `href="/subscriptions"`)
	assert.Contains(t, body, `href="/login/"`)
	assert.Equal(t, "private, no-cache", rec.Header().Get("Cache-Control"))
}

func TestRootRedirectsToRecipes(t *testing.T) {
	app := newTestApp(t)
	rec := newClient(t, app).get("/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/recipes/", rec.Header().Get("Location"))
}

func TestMenuHrefRedirectsToSlashRoute(t *testing.T) {
	app := newTestApp(t)
	rec := newClient(t, app).get("/recipes")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/recipes/", rec.Header().Get("Location"))
}

func TestGatedRoutesRedirectAnonymousToLogin(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app)
	for _, e := range nav.Default.Entries() {
		if !e.Auth {
			continue
		}
		rec := c.get(e.Href + "/")
		assert.Equal(t, http.StatusSeeOther, rec.Code, e.Href)
		assert.Equal(t, "/login/", rec.Header().Get("Location"), e.Href)
	}
}

func TestUnknownPathRendersNotFoundWithFooter(t *testing.T) {
	app := newTestApp(t)
	rec := newClient(t, app).get("/no-such-page/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Страница не найдена")
	assert.Contains(t, rec.Body.String(), footerHTML)
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader("email=a%40b.c&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := newClient(t, app).do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSignupShowsFullMenu(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app)
	c.signup("barman")

	rec := c.get("/recipes/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Добро пожаловать, Иван!")
	assert.Contains(t, body, "barman")

	last := -1
	for _, e := range nav.Default.Entries() {
		i := strings.Index(body, `href="`+e.Href+`"`)
		require.NotEqual(t, -1, i, e.Href)
		assert.Greater(t, i, last, "menu order for %s", e.Href)
		last = i
	}
	assert.Contains(t, body, footerHTML)

	// The flash is shown once.
	assert.NotContains(t, c.get("/recipes/").Body.String(), "Добро пожаловать")
}

func TestSignupDuplicateAndInvalid(t *testing.T) {
	app := newTestApp(t)
	newClient(t, app).signup("barman")

	c := newClient(t, app)
	rec := c.post("/signup/", url.Values{
		"email": {"barman@example.com"}, "username": {"barman"},
		"first_name": {"A"}, "last_name": {"B"}, "password": {"password123"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.post("/signup/", url.Values{
		"email": {"x@example.com"}, "username": {"x"},
		"first_name": {"A"}, "last_name": {"B"}, "password": {"short"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Пароль должен содержать не менее 8 символов")
}

func TestLoginLogout(t *testing.T) {
	app := newTestApp(t)
	newClient(t, app).signup("barman")

	c := newClient(t, app)
	rec := c.post("/login/", url.Values{"email": {"barman@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Неверный адрес почты или пароль")

	rec = c.post("/login/", url.Values{"email": {"barman@example.com"}, "password": {"password123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusOK, c.get("/favorites/").Code)

	rec = c.post("/logout/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusSeeOther, c.get("/favorites/").Code)
	assert.NotContains(t, c.get("/recipes/").Body.String(), `href="/favorites"`)
}

func TestLoginRateLimited(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app)
	for i := 0; i < 5; i++ {
		rec := c.post("/login/", url.Values{"email": {"who@example.com"}, "password": {"bad"}})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := c.post("/login/", url.Values{"email": {"who@example.com"}, "password": {"bad"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

// seedRecipe creates a tag, an ingredient, and a recipe by a fresh author.
func seedRecipe(t *testing.T, app *App) (recipeID int64, ing Ingredient) {
	t.Helper()
	author, err := app.Store.CreateUser(SignupInput{
		Email: "author@example.com", Username: "author", FirstName: "Анна", LastName: "Смирнова", Password: "password123",
	})
	require.NoError(t, err)
	tag, err := app.Store.CreateTag(Tag{Name: "Sour", Slug: "sour", Color: "#e26c2d"})
	require.NoError(t, err)
	ing, err = app.Store.CreateIngredient("ром", "мл")
	require.NoError(t, err)
	recipeID, err = app.Store.CreateRecipe(RecipeInput{
		AuthorID: author.ID, Name: "Дайкири", Image: "/media/recipes/d.jpg", Text: "Встряхнуть.",
		CookingTime: 3, TagIDs: []int64{tag.ID}, Ingredients: []IngredientAmount{{ID: ing.ID, Amount: 60}},
	})
	require.NoError(t, err)
	app.Cache.Invalidate()
	return recipeID, ing
}

func TestRecipeDetailAndMissing(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	c := newClient(t, app)

	rec := c.get(views.RecipeURL(id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Дайкири")
	assert.Contains(t, rec.Body.String(), "Дайкири | CocktailsGram")

	assert.Equal(t, http.StatusNotFound, c.get(views.RecipeURL(id+100)).Code)
	assert.Equal(t, http.StatusNotFound, c.get("/recipes/abc/").Code)
}

func TestCartFlowAndDownload(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	c := newClient(t, app)
	c.signup("buyer")

	rec := c.post(views.RecipeURL(id)+"cart/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, views.RecipeURL(id), rec.Header().Get("Location"))

	page := c.get("/cart/")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Дайкири")

	dl := c.get("/cart/download/")
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, `attachment; filename="shopping_cart.txt"`, dl.Header().Get("Content-Disposition"))
	assert.Equal(t, "Shopping list:\nром - 60 мл\n", dl.Body.String())

	rec = c.post(views.RecipeURL(id)+"uncart/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Shopping list:\n", c.get("/cart/download/").Body.String())
}

func TestFavoriteAndSubscribe(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	c := newClient(t, app)
	c.signup("fan")

	require.Equal(t, http.StatusSeeOther, c.post(views.RecipeURL(id)+"favorite/", nil).Code)
	fav := c.get("/favorites/")
	require.Equal(t, http.StatusOK, fav.Code)
	assert.Contains(t, fav.Body.String(), "Дайкири")
	assert.Contains(t, fav.Body.String(), "Убрать из избранного")

	r, err := app.Store.GetRecipe(id, 0)
	require.NoError(t, err)
	authorPath := "/users/" + formatID(r.Author.ID) + "/"
	require.Equal(t, http.StatusSeeOther, c.post(authorPath+"subscribe/", nil).Code)
	subs := c.get("/subscriptions/")
	require.Equal(t, http.StatusOK, subs.Code)
	assert.Contains(t, subs.Body.String(), "Анна Смирнова")

	assert.Equal(t, http.StatusNotFound, c.post("/users/9999/subscribe/", nil).Code)
}

func TestRecipeCreateWithImage(t *testing.T) {
	app := newTestApp(t)
	seedRecipe(t, app)
	tags, err := app.Store.ListTags()
	require.NoError(t, err)
	c := newClient(t, app)
	c.signup("chef")

	form := c.get("/recipes/create/")
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), "ром (мл)")

	img := image.NewRGBA(image.Rect(0, 0, 1200, 600))
	img.Set(10, 10, color.RGBA{R: 255, A: 255})
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := [][2]string{
		{"_csrf", c.csrf()},
		{"name", "Мохито"},
		{"text", "Подавать со льдом."},
		{"cooking_time", "5"},
		{"tags", formatID(tags[0].ID)},
		{"ingredient", "ром (мл)"},
		{"amount", "50"},
	}
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f[0], f[1]))
	}
	fw, err := mw.CreateFormFile("image", "mojito.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/recipes/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := c.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	loc := rec.Header().Get("Location")
	page := c.get(loc)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Мохито")
	assert.Contains(t, page.Body.String(), "Рецепт опубликован")

	recipes, total, err := app.Store.ListRecipes(RecipeFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	stored := filepath.Join(app.Config.MediaDir, strings.TrimPrefix(recipes[0].Image, "/media/"))
	decoded, err := os.Open(stored)
	require.NoError(t, err)
	defer decoded.Close()
	cfg, _, err := image.DecodeConfig(decoded)
	require.NoError(t, err)
	assert.Equal(t, maxImageWidth, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestRecipeCreateRejectsUnknownIngredient(t *testing.T) {
	app := newTestApp(t)
	seedRecipe(t, app)
	c := newClient(t, app)
	c.signup("chef")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range [][2]string{
		{"_csrf", c.csrf()}, {"name", "Ничто"}, {"text", "-"}, {"cooking_time", "1"},
		{"ingredient", "вода (л)"}, {"amount", "1"},
	} {
		require.NoError(t, mw.WriteField(f[0], f[1]))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/recipes/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := c.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Неизвестный ингредиент: вода (л)")
}

func TestRecipeDeleteOnlyByAuthor(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	c := newClient(t, app)
	c.signup("stranger")

	assert.Equal(t, http.StatusForbidden, c.post(views.RecipeURL(id)+"delete/", nil).Code)
	_, err := app.Store.GetRecipe(id, 0)
	assert.NoError(t, err)
}

func TestIngredientSearchJSON(t *testing.T) {
	app := newTestApp(t)
	seedRecipe(t, app)
	_, err := app.Store.CreateIngredient("розмарин", "г")
	require.NoError(t, err)
	_, err = app.Store.CreateIngredient("лайм", "шт")
	require.NoError(t, err)

	rec := newClient(t, app).get("/ingredients/?name=" + url.QueryEscape("ро"))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []ingredientJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "розмарин", got[0].Name)
	assert.Equal(t, "ром", got[1].Name)
	assert.Equal(t, "мл", got[1].MeasurementUnit)
}

func TestRobotsAndSitemap(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	c := newClient(t, app)

	robots := c.get("/robots.txt").Body.String()
	assert.Contains(t, robots, "Disallow: /favorites\n")
	assert.Contains(t, robots, "Disallow: /cart\n")
	assert.NotContains(t, robots, "Disallow: /recipes\n")
	assert.Contains(t, robots, "Sitemap: https://cocktails.example/sitemap.xml")

	sitemap := c.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, sitemap.Code)
	assert.Contains(t, sitemap.Body.String(), "<loc>https://cocktails.example/recipes/</loc>")
	assert.Contains(t, sitemap.Body.String(), "<loc>https://cocktails.example/recipes/"+formatID(id)+"/</loc>")
}

func TestEmbeddedStylesheet(t *testing.T) {
	app := newTestApp(t)
	rec := newClient(t, app).get("/public/styles.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".footer__brand")
	assert.Contains(t, rec.Body.String(), ".nav__item_active")
}

func TestCustomMenu(t *testing.T) {
	menu := nav.MustNew([]nav.MenuEntry{
		{Title: "Главная", Href: "/recipes", Auth: false},
		{Title: "Тайное", Href: "/secret", Auth: true},
	})
	app := newTestApp(t, WithMenu(menu))
	assert.Equal(t, 2, app.Menu().Len())

	body := newClient(t, app).get("/recipes/").Body.String()
	assert.Contains(t, body, `title="Главная"`)
	assert.NotContains(t, body, "Тайное")
	assert.NotContains(t, body, "Мои подписки")
}

func TestInitRequiresSessionSecret(t *testing.T) {
	app := New(SiteConfig{DatabasePath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, app.Init())
}

func TestInitRejectsBrokenMenuFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- title: Рецепты\n  href: /recipes\n"), 0o644))

	app := New(SiteConfig{
		DatabasePath:  filepath.Join(dir, "x.db"),
		SessionSecret: "secret",
		NavConfig:     path,
	})
	err := app.Init()
	require.Error(t, err)
	var ve *nav.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestMetricsEndpoint(t *testing.T) {
	dir := t.TempDir()
	app := New(SiteConfig{
		DatabasePath:   filepath.Join(dir, "test.db"),
		MediaDir:       filepath.Join(dir, "media"),
		SessionSecret:  "test-session-secret",
		MetricsEnabled: true,
	})
	require.NoError(t, app.Init())
	t.Cleanup(func() { app.Close() })

	c := newClient(t, app)
	c.signup("counted")
	rec := c.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cocktailsgram_signups_total 1")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestRecipeFeed(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)

	rec := newClient(t, app).get("/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `<rss version="2.0">`)
	assert.Contains(t, body, "<title>Дайкири</title>")
	assert.Contains(t, body, "<category>Sour</category>")
	assert.Contains(t, body, "<guid>https://cocktails.example/recipes/"+formatID(id)+"/</guid>")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// postMultipart submits fields, and the image when img is non-nil, as a
// multipart form.
func (c *client) postMultipart(path string, fields [][2]string, img []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(c.t, mw.WriteField("_csrf", c.csrf()))
	for _, f := range fields {
		require.NoError(c.t, mw.WriteField(f[0], f[1]))
	}
	if img != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(c.t, err)
		_, err = fw.Write(img)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func loginAsSeedAuthor(t *testing.T, app *App) *client {
	t.Helper()
	c := newClient(t, app)
	rec := c.post("/login/", url.Values{"email": {"author@example.com"}, "password": {"password123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return c
}

func TestRecipeEditByAuthor(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	tags, err := app.Store.ListTags()
	require.NoError(t, err)
	_, err = app.Store.CreateIngredient("лайм", "шт")
	require.NoError(t, err)
	c := loginAsSeedAuthor(t, app)

	detail := c.get(views.RecipeURL(id))
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), `href="`+views.RecipeURL(id)+`edit/"`)

	form := c.get(views.RecipeURL(id) + "edit/")
	require.Equal(t, http.StatusOK, form.Code)
	body := form.Body.String()
	assert.Contains(t, body, "Редактирование рецепта")
	assert.Contains(t, body, `action="`+views.RecipeURL(id)+`edit/"`)
	assert.Contains(t, body, `value="Дайкири"`)
	assert.Contains(t, body, `value="ром (мл)"`)
	assert.Contains(t, body, `value="60"`)
	assert.Contains(t, body, `src="/media/recipes/d.jpg"`)

	rec := c.postMultipart(views.RecipeURL(id)+"edit/", [][2]string{
		{"name", "Дайкири с лаймом"},
		{"text", "Встряхнуть со льдом."},
		{"cooking_time", "4"},
		{"tags", formatID(tags[0].ID)},
		{"ingredient", "ром (мл)"}, {"amount", "50"},
		{"ingredient", "лайм (шт)"}, {"amount", "1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, views.RecipeURL(id), rec.Header().Get("Location"))

	r, err := app.Store.GetRecipe(id, 0)
	require.NoError(t, err)
	assert.Equal(t, "Дайкири с лаймом", r.Name)
	assert.Equal(t, "/media/recipes/d.jpg", r.Image)
	require.Len(t, r.Ingredients, 2)

	page := c.get(views.RecipeURL(id))
	assert.Contains(t, page.Body.String(), "Рецепт обновлён")
	assert.Contains(t, page.Body.String(), "лайм")
	assert.Contains(t, newClient(t, app).get("/recipes/").Body.String(), "Дайкири с лаймом")
}

func TestRecipeEditReplacesImage(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	tags, err := app.Store.ListTags()
	require.NoError(t, err)
	oldPath := filepath.Join(app.Config.MediaDir, "recipes", "d.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(oldPath), 0o755))
	require.NoError(t, os.WriteFile(oldPath, []byte("old"), 0o644))
	c := loginAsSeedAuthor(t, app)

	rec := c.postMultipart(views.RecipeURL(id)+"edit/", [][2]string{
		{"name", "Дайкири"},
		{"text", "Встряхнуть."},
		{"cooking_time", "3"},
		{"tags", formatID(tags[0].ID)},
		{"ingredient", "ром (мл)"}, {"amount", "60"},
	}, pngBytes(t, 100, 50))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	r, err := app.Store.GetRecipe(id, 0)
	require.NoError(t, err)
	require.NotEqual(t, "/media/recipes/d.jpg", r.Image)
	_, err = os.Stat(filepath.Join(app.Config.MediaDir, strings.TrimPrefix(r.Image, "/media/")))
	assert.NoError(t, err)
	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err), "old image should be removed")
}

func TestRecipeEditRejectsInvalidForm(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	c := loginAsSeedAuthor(t, app)

	rec := c.postMultipart(views.RecipeURL(id)+"edit/", [][2]string{
		{"name", "Без тегов"}, {"text", "-"}, {"cooking_time", "1"},
		{"ingredient", "ром (мл)"}, {"amount", "10"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Проверьте рецепт")
	assert.Contains(t, rec.Body.String(), `value="Без тегов"`)

	r, err := app.Store.GetRecipe(id, 0)
	require.NoError(t, err)
	assert.Equal(t, "Дайкири", r.Name)
}

func TestRecipeEditOnlyByAuthor(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	c := newClient(t, app)

	assert.Equal(t, http.StatusSeeOther, c.get(views.RecipeURL(id)+"edit/").Code)

	c.signup("stranger")
	assert.Equal(t, http.StatusForbidden, c.get(views.RecipeURL(id)+"edit/").Code)
	rec := c.postMultipart(views.RecipeURL(id)+"edit/", [][2]string{
		{"name", "Чужой"}, {"text", "-"}, {"cooking_time", "1"},
	}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, c.get(views.RecipeURL(id)).Body.String(), "edit/")
	assert.Equal(t, http.StatusNotFound, c.get(views.RecipeURL(id+100)+"edit/").Code)

	r, err := app.Store.GetRecipe(id, 0)
	require.NoError(t, err)
	assert.Equal(t, "Дайкири", r.Name)
}

func TestAuthorPage(t *testing.T) {
	app := newTestApp(t)
	id, _ := seedRecipe(t, app)
	r, err := app.Store.GetRecipe(id, 0)
	require.NoError(t, err)
	authorPath := views.UserURL(r.Author.ID)

	anon := newClient(t, app)
	list := anon.get("/recipes/")
	assert.Contains(t, list.Body.String(), `href="`+authorPath+`"`)
	assert.Contains(t, anon.get(views.RecipeURL(id)).Body.String(), `href="`+authorPath+`"`)

	rec := anon.get(authorPath)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Анна Смирнова | CocktailsGram")
	assert.Contains(t, body, "Дайкири")
	assert.Contains(t, body, footerHTML)
	assert.NotContains(t, body, "Подписаться на автора")

	c := newClient(t, app)
	c.signup("fan")
	assert.Contains(t, c.get(authorPath).Body.String(), "Подписаться на автора")
	require.Equal(t, http.StatusSeeOther, c.post(authorPath+"subscribe/", nil).Code)
	assert.Contains(t, c.get(authorPath).Body.String(), "Отписаться от автора")
	assert.Contains(t, c.get("/subscriptions/").Body.String(), `href="`+authorPath+`"`)

	assert.Equal(t, http.StatusNotFound, anon.get("/users/9999/").Code)
	assert.Equal(t, http.StatusNotFound, anon.get("/users/abc/").Code)
}

func TestSubscriptionsPaging(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t, app)
	c.signup("reader")
	for _, name := range []string{"alpha", "bravo", "charlie"} {
		u, err := app.Store.CreateUser(SignupInput{
			Email: name + "@example.com", Username: name, FirstName: name, LastName: "Author", Password: "password123",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusSeeOther, c.post(views.UserURL(u.ID)+"subscribe/", nil).Code)
	}

	first := c.get("/subscriptions/?limit=2").Body.String()
	assert.Contains(t, first, "alpha Author")
	assert.Contains(t, first, "bravo Author")
	assert.NotContains(t, first, "charlie Author")
	assert.Contains(t, first, `class="pagination"`)

	second := c.get("/subscriptions/?limit=2&page=2").Body.String()
	assert.Contains(t, second, "charlie Author")
	assert.NotContains(t, second, "alpha Author")
}
