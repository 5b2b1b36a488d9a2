package views

import (
	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/eringen/cocktailsgram/nav"
)

// HeaderStyles names the style classes the header and menu use.
type HeaderStyles struct {
	Header     string
	Container  string
	Menu       string
	Item       string
	ItemActive string
	Link       string
	Account    string
}

// Theme bundles the style classes of the page chrome.
type Theme struct {
	Header HeaderStyles
	Footer FooterStyles
}

// DefaultTheme returns the classes defined in the embedded stylesheet.
func DefaultTheme() Theme {
	return Theme{
		Header: HeaderStyles{
			Header:     "header",
			Container:  "header__container",
			Menu:       "nav",
			Item:       "nav__item",
			ItemActive: "nav__item_active",
			Link:       "nav__link",
			Account:    "account",
		},
		Footer: DefaultFooterStyles(),
	}
}

// Header renders the site header. Menu entries that need a session are
// hidden from anonymous visitors.
func Header(meta PageMeta, st HeaderStyles) templ.Component {
	return Component(headerNode(meta, st))
}

func headerNode(meta PageMeta, st HeaderStyles) g.Node {
	entries := meta.Menu.Visible(meta.Authenticated())
	active := nav.Active(entries, meta.Path)
	items := make([]g.Node, 0, len(entries))
	for i, e := range entries {
		class := st.Item
		if i == active {
			class += " " + st.ItemActive
		}
		items = append(items, html.Li(html.Class(class), Link(e.Href, e.Title, st.Link)))
	}

	var account g.Node
	if meta.User != nil {
		account = html.Div(html.Class(st.Account),
			html.Span(g.Text(meta.User.Username)),
			ButtonForm("/logout/", "Выход", "button button_link", meta.CSRFToken),
		)
	} else {
		account = html.Div(html.Class(st.Account),
			Link("/login/", "Войти", "button button_link"),
			Link("/signup/", "Создать аккаунт", "button"),
		)
	}

	return html.Header(
		html.Class(st.Header),
		Container(st.Container,
			html.Nav(html.Ul(html.Class(st.Menu), g.Group(items))),
			account,
		),
	)
}

// page wraps content in the full HTML document with header and footer.
func page(meta PageMeta, content ...g.Node) templ.Component {
	theme := meta.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme()
	}
	title := meta.SiteName
	if meta.Title != "" {
		title = meta.Title + " | " + meta.SiteName
	}
	return Component(html.Doctype(
		html.HTML(
			html.Lang("ru"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(g.Text(title)),
				html.Link(html.Rel("stylesheet"), html.Href("/public/styles.css")),
			),
			html.Body(
				headerNode(meta, theme.Header),
				html.Main(
					html.Class("main"),
					g.If(meta.Flash != "", html.Div(html.Class("flash"), g.Text(meta.Flash))),
					g.Group(content),
				),
				footerNode(theme.Footer),
			),
		),
	))
}
