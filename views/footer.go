package views

import (
	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

const (
	BrandHref  = "https://cocktailsgram.ddns.net/recipes"
	BrandTitle = "© 2024 CocktailsGram"
)

// FooterStyles names the style classes the footer uses.
type FooterStyles struct {
	Footer    string
	Container string
	Brand     string
}

// DefaultFooterStyles returns the classes defined in the embedded stylesheet.
func DefaultFooterStyles() FooterStyles {
	return FooterStyles{
		Footer:    "footer",
		Container: "footer__container",
		Brand:     "footer__brand",
	}
}

// Footer renders the page footer with the default styles.
func Footer() templ.Component {
	return FooterWith(DefaultFooterStyles())
}

// FooterWith renders the page footer with the given styles.
func FooterWith(st FooterStyles) templ.Component {
	return Component(footerNode(st))
}

func footerNode(st FooterStyles) g.Node {
	return html.Footer(
		html.Class(st.Footer),
		Container(st.Container,
			Link(BrandHref, BrandTitle, st.Brand),
		),
	)
}
