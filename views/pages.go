package views

import (
	"strconv"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Recipes renders the main recipe listing with tag filters and pagination.
func Recipes(meta PageMeta, p RecipePage, tags []Tag) templ.Component {
	return page(meta,
		html.H1(html.Class("title"), g.Text("Рецепты")),
		tagFilter("/recipes/", tags, p.ActiveTags),
		recipeGrid(meta, p.Recipes, "Рецептов пока нет"),
		pagination("/recipes/", p),
	)
}

// Favorites renders the signed-in user's favourite recipes.
func Favorites(meta PageMeta, p RecipePage, tags []Tag) templ.Component {
	return page(meta,
		html.H1(html.Class("title"), g.Text("Избранное")),
		tagFilter("/favorites/", tags, p.ActiveTags),
		recipeGrid(meta, p.Recipes, "В избранном пока ничего нет"),
		pagination("/favorites/", p),
	)
}

func tagFilter(base string, tags []Tag, active []string) g.Node {
	if len(tags) == 0 {
		return g.Group(nil)
	}
	isActive := make(map[string]bool, len(active))
	for _, t := range active {
		isActive[t] = true
	}
	items := make([]g.Node, 0, len(tags))
	for _, t := range tags {
		items = append(items, html.Li(html.A(
			html.Class(TagClass(isActive[t.Slug])),
			html.Style(tagStyle(t.Color)),
			html.Href(listURL(base, toggleTag(active, t.Slug), 1)),
			g.Text(t.Name),
		)))
	}
	return html.Ul(html.Class("tags"), g.Group(items))
}

func recipeGrid(meta PageMeta, recipes []Recipe, empty string) g.Node {
	if len(recipes) == 0 {
		return html.P(html.Class("empty"), g.Text(empty))
	}
	cards := make([]g.Node, 0, len(recipes))
	for _, r := range recipes {
		cards = append(cards, recipeCard(meta, r))
	}
	return html.Div(html.Class("cards"), g.Group(cards))
}

func recipeCard(meta PageMeta, r Recipe) g.Node {
	return html.Article(
		html.Class("card"),
		html.A(html.Href(RecipeURL(r.ID)),
			html.Img(html.Class("card__image"), html.Src(r.Image), html.Alt(r.Name)),
		),
		html.Div(html.Class("card__body"),
			Link(RecipeURL(r.ID), r.Name, "card__title"),
			tagList(r.Tags),
			html.P(html.Class("card__time"), g.Textf("%d мин.", r.CookingTime)),
			html.P(html.Class("card__author"), authorLink(r.Author)),
		),
		g.If(meta.Authenticated(), recipeActions(meta, r)),
	)
}

func authorLink(u User) g.Node {
	return html.A(html.Href(UserURL(u.ID)), g.Text(fullName(u)))
}

// followButton toggles a subscription. It renders nothing for visitors and
// on the viewer's own recipes or page.
func followButton(meta PageMeta, authorID int64, subscribed bool) g.Node {
	if meta.User == nil || meta.User.ID == authorID {
		return g.Group(nil)
	}
	if subscribed {
		return ButtonForm(UserURL(authorID)+"unsubscribe/", "Отписаться от автора", "button button_light", meta.CSRFToken)
	}
	return ButtonForm(UserURL(authorID)+"subscribe/", "Подписаться на автора", "button button_light", meta.CSRFToken)
}

func tagList(tags []Tag) g.Node {
	items := make([]g.Node, 0, len(tags))
	for _, t := range tags {
		items = append(items, html.Li(html.Span(html.Class("tag"), html.Style(tagStyle(t.Color)), g.Text(t.Name))))
	}
	return html.Ul(html.Class("tags tags_small"), g.Group(items))
}

func recipeActions(meta PageMeta, r Recipe) g.Node {
	base := RecipeURL(r.ID)
	fav := ButtonForm(base+"favorite/", "В избранное", "button button_light", meta.CSRFToken)
	if r.IsFavorited {
		fav = ButtonForm(base+"unfavorite/", "Убрать из избранного", "button button_light", meta.CSRFToken)
	}
	cart := ButtonForm(base+"cart/", "В покупки", "button", meta.CSRFToken)
	if r.IsInCart {
		cart = ButtonForm(base+"uncart/", "Убрать из покупок", "button", meta.CSRFToken)
	}
	return html.Div(html.Class("card__actions"), cart, fav)
}

func pagination(base string, p RecipePage) g.Node {
	if p.TotalPages <= 1 {
		return g.Group(nil)
	}
	items := make([]g.Node, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		class := "pagination__item"
		if i == p.Page {
			class += " pagination__item_active"
		}
		items = append(items, html.Li(html.Class(class),
			html.A(html.Href(listURL(base, p.ActiveTags, i)), g.Text(strconv.Itoa(i)))))
	}
	return html.Nav(html.Ul(html.Class("pagination"), g.Group(items)))
}

// RecipeDetail renders a single recipe.
func RecipeDetail(meta PageMeta, r Recipe, subscribed bool) templ.Component {
	ings := make([]g.Node, 0, len(r.Ingredients))
	for _, in := range r.Ingredients {
		ings = append(ings, html.Li(g.Textf("%s — %d %s", in.Name, in.Amount, in.MeasurementUnit)))
	}
	own := meta.User != nil && meta.User.ID == r.Author.ID
	return page(meta,
		html.Article(html.Class("recipe"),
			html.Img(html.Class("recipe__image"), html.Src(r.Image), html.Alt(r.Name)),
			html.Div(html.Class("recipe__info"),
				html.H1(html.Class("recipe__title"), g.Text(r.Name)),
				tagList(r.Tags),
				html.P(html.Class("recipe__time"), g.Textf("%d мин.", r.CookingTime)),
				html.P(html.Class("recipe__author"), authorLink(r.Author), g.Text(" · "), g.Text(pubDate(r))),
				g.If(meta.Authenticated(), recipeActions(meta, r)),
				followButton(meta, r.Author.ID, subscribed),
				html.H2(g.Text("Ингредиенты:")),
				html.Ul(html.Class("recipe__ingredients"), g.Group(ings)),
				html.H2(g.Text("Описание:")),
				html.P(html.Class("recipe__text"), g.Text(r.Text)),
				g.If(own, html.Div(html.Class("recipe__owner"),
					Link(RecipeURL(r.ID)+"edit/", "Редактировать рецепт", "button button_light"),
					ButtonForm(RecipeURL(r.ID)+"delete/", "Удалить рецепт", "button button_danger", meta.CSRFToken),
				)),
			),
		),
	)
}

// RecipeFormValues fills the recipe form: the stored recipe when editing, or
// the submitted values after a validation error.
type RecipeFormValues struct {
	Action      string // defaults to /recipes/create/
	Image       string // current photo, set only when editing
	Name        string
	Text        string
	CookingTime string
	TagIDs      map[int64]bool
	Ingredients []IngredientRow
}

// Editing reports whether the form edits an existing recipe.
func (v RecipeFormValues) Editing() bool {
	return v.Image != ""
}

// Title is the heading of the form page.
func (v RecipeFormValues) Title() string {
	if v.Editing() {
		return "Редактирование рецепта"
	}
	return "Создание рецепта"
}

// IngredientRow is one ingredient line of the recipe form.
type IngredientRow struct {
	Label  string
	Amount string
}

// IngredientRows is the number of ingredient lines the form offers.
const IngredientRows = 8

// RecipeForm renders the form that creates or edits a recipe.
func RecipeForm(meta PageMeta, tags []Tag, catalogue []Ingredient, v RecipeFormValues, formErr string) templ.Component {
	tagBoxes := make([]g.Node, 0, len(tags))
	for _, t := range tags {
		id := strconv.FormatInt(t.ID, 10)
		tagBoxes = append(tagBoxes, html.Label(html.Class("checkbox"),
			html.Input(html.Type("checkbox"), html.Name("tags"), html.Value(id), g.If(v.TagIDs[t.ID], html.Checked())),
			html.Span(html.Style(tagStyle(t.Color)), g.Text(t.Name)),
		))
	}

	options := make([]g.Node, 0, len(catalogue))
	for _, in := range catalogue {
		options = append(options, html.Option(html.Value(IngredientLabel(in))))
	}

	rows := make([]g.Node, 0, IngredientRows)
	for i := 0; i < IngredientRows; i++ {
		var row IngredientRow
		if i < len(v.Ingredients) {
			row = v.Ingredients[i]
		}
		rows = append(rows, html.Div(html.Class("form__row form__row_inline"),
			html.Input(html.Type("text"), html.Name("ingredient"), g.Attr("list", "ingredient-options"),
				html.Placeholder("Ингредиент"), html.Value(row.Label)),
			html.Input(html.Type("number"), html.Name("amount"), g.Attr("min", "1"),
				html.Placeholder("Кол-во"), html.Value(row.Amount)),
		))
	}

	action, submit := v.Action, "Создать рецепт"
	if action == "" {
		action = "/recipes/create/"
	}
	if v.Editing() {
		submit = "Сохранить рецепт"
	}

	return page(meta,
		html.H1(html.Class("title"), g.Text(v.Title())),
		g.If(formErr != "", html.P(html.Class("form__error"), g.Text(formErr))),
		html.Form(html.Class("form"),
			html.Method("post"),
			html.Action(action),
			g.Attr("enctype", "multipart/form-data"),
			html.Input(html.Type("hidden"), html.Name("_csrf"), html.Value(meta.CSRFToken)),
			formField("Название рецепта", html.Input(html.Type("text"), html.Name("name"), html.Value(v.Name), html.Required())),
			html.Div(html.Class("form__row"), html.Span(html.Class("form__label"), g.Text("Теги")), g.Group(tagBoxes)),
			html.Div(html.Class("form__row"),
				html.Span(html.Class("form__label"), g.Text("Ингредиенты")),
				g.Group(rows),
				g.El("datalist", html.ID("ingredient-options"), g.Group(options)),
			),
			formField("Время приготовления (мин.)", html.Input(html.Type("number"), html.Name("cooking_time"),
				g.Attr("min", "1"), html.Value(v.CookingTime), html.Required())),
			formField("Описание рецепта", html.Textarea(html.Name("text"), g.Attr("rows", "6"), html.Required(), g.Text(v.Text))),
			g.If(v.Editing(), html.Img(html.Class("form__image"), html.Src(v.Image), html.Alt(v.Name))),
			formField("Загрузить фото", html.Input(html.Type("file"), html.Name("image"), g.Attr("accept", "image/*"),
				g.If(!v.Editing(), html.Required()))),
			html.Button(html.Type("submit"), html.Class("button"), g.Text(submit)),
		),
	)
}

func formField(label string, input g.Node) g.Node {
	return html.Label(html.Class("form__row"),
		html.Span(html.Class("form__label"), g.Text(label)),
		input,
	)
}

// Cart renders the recipes in the shopping cart and the summed ingredient list.
func Cart(meta PageMeta, recipes []Recipe, items []ShoppingItem) templ.Component {
	lines := make([]g.Node, 0, len(items))
	for _, it := range items {
		lines = append(lines, html.Li(g.Textf("%s — %d %s", it.Name, it.Amount, it.MeasurementUnit)))
	}
	return page(meta,
		html.H1(html.Class("title"), g.Text("Список покупок")),
		recipeGrid(meta, recipes, "В списке покупок пока ничего нет"),
		g.If(len(items) > 0, html.Section(html.Class("shopping-list"),
			html.H2(g.Text("Нужно купить:")),
			html.Ul(g.Group(lines)),
			Link("/cart/download/", "Скачать список", "button"),
		)),
	)
}

// Subscriptions renders one page of the authors the user follows.
func Subscriptions(meta PageMeta, subs []Subscription, p RecipePage) templ.Component {
	if len(subs) == 0 {
		return page(meta,
			html.H1(html.Class("title"), g.Text("Мои подписки")),
			html.P(html.Class("empty"), g.Text("Вы пока ни на кого не подписаны")),
		)
	}
	blocks := make([]g.Node, 0, len(subs))
	for _, s := range subs {
		previews := make([]g.Node, 0, len(s.Recipes))
		for _, r := range s.Recipes {
			previews = append(previews, html.Li(html.Class("subscription__recipe"),
				html.Img(html.Src(r.Image), html.Alt(r.Name)),
				Link(RecipeURL(r.ID), r.Name, ""),
				html.Span(g.Textf("%d мин.", r.CookingTime)),
			))
		}
		blocks = append(blocks, html.Section(html.Class("subscription"),
			html.H2(html.Class("subscription__author"), authorLink(s.Author)),
			html.Ul(g.Group(previews)),
			html.P(g.Textf("Всего рецептов: %d", s.RecipesCount)),
			ButtonForm(UserURL(s.Author.ID)+"unsubscribe/", "Отписаться", "button button_light", meta.CSRFToken),
		))
	}
	return page(meta,
		html.H1(html.Class("title"), g.Text("Мои подписки")),
		g.Group(blocks),
		pagination("/subscriptions/", p),
	)
}

// Author renders an author's page: their recipes and a follow button.
func Author(meta PageMeta, author User, p RecipePage, tags []Tag, subscribed bool) templ.Component {
	base := UserURL(author.ID)
	return page(meta,
		html.H1(html.Class("title"), g.Text(fullName(author))),
		followButton(meta, author.ID, subscribed),
		tagFilter(base, tags, p.ActiveTags),
		recipeGrid(meta, p.Recipes, "У автора пока нет рецептов"),
		pagination(base, p),
	)
}

// Login renders the sign-in form.
func Login(meta PageMeta, email string, showError bool) templ.Component {
	return page(meta,
		html.H1(html.Class("title"), g.Text("Войти на сайт")),
		g.If(showError, html.P(html.Class("form__error"), g.Text("Неверный адрес почты или пароль"))),
		html.Form(html.Class("form"), html.Method("post"), html.Action("/login/"),
			html.Input(html.Type("hidden"), html.Name("_csrf"), html.Value(meta.CSRFToken)),
			formField("Электронная почта", html.Input(html.Type("email"), html.Name("email"), html.Value(email), html.Required())),
			formField("Пароль", html.Input(html.Type("password"), html.Name("password"), html.Required())),
			html.Button(html.Type("submit"), html.Class("button"), g.Text("Войти")),
		),
	)
}

// SignupValues repopulates the sign-up form after an error.
type SignupValues struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// Signup renders the registration form.
func Signup(meta PageMeta, v SignupValues, formErr string) templ.Component {
	return page(meta,
		html.H1(html.Class("title"), g.Text("Регистрация")),
		g.If(formErr != "", html.P(html.Class("form__error"), g.Text(formErr))),
		html.Form(html.Class("form"), html.Method("post"), html.Action("/signup/"),
			html.Input(html.Type("hidden"), html.Name("_csrf"), html.Value(meta.CSRFToken)),
			formField("Имя", html.Input(html.Type("text"), html.Name("first_name"), html.Value(v.FirstName), html.Required())),
			formField("Фамилия", html.Input(html.Type("text"), html.Name("last_name"), html.Value(v.LastName), html.Required())),
			formField("Имя пользователя", html.Input(html.Type("text"), html.Name("username"), html.Value(v.Username), html.Required())),
			formField("Адрес электронной почты", html.Input(html.Type("email"), html.Name("email"), html.Value(v.Email), html.Required())),
			formField("Пароль", html.Input(html.Type("password"), html.Name("password"), html.Required())),
			html.Button(html.Type("submit"), html.Class("button"), g.Text("Создать аккаунт")),
		),
	)
}

// NotFound renders the 404 page.
func NotFound(meta PageMeta) templ.Component {
	meta.Title = "Страница не найдена"
	return page(meta,
		html.H1(html.Class("title"), g.Text("404")),
		html.P(g.Text("Страница не найдена")),
		Link("/recipes/", "Вернуться к рецептам", "button"),
	)
}

// ServerError renders the 500 page.
func ServerError(meta PageMeta) templ.Component {
	meta.Title = "Ошибка"
	return page(meta,
		html.H1(html.Class("title"), g.Text("Что-то пошло не так")),
		html.P(g.Text("Попробуйте обновить страницу позже.")),
	)
}
