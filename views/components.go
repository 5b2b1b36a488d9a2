package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Component adapts a gomponents node to templ so it can be handed to the
// Echo render helpers.
func Component(n g.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return n.Render(w)
	})
}

// Container is the generic layout wrapper.
func Container(class string, children ...g.Node) g.Node {
	return html.Div(
		g.If(class != "", html.Class(class)),
		g.Group(children),
	)
}

// Link is the generic anchor. title is both the visible text and the
// accessible label.
func Link(href, title, class string) g.Node {
	return html.A(
		html.Href(href),
		html.Title(title),
		g.If(class != "", html.Class(class)),
		g.Text(title),
	)
}

// ButtonForm renders a single-button POST form carrying the CSRF token.
func ButtonForm(action, label, class, csrf string) g.Node {
	return html.Form(
		html.Method("post"),
		html.Action(action),
		html.Class("inline-form"),
		html.Input(html.Type("hidden"), html.Name("_csrf"), html.Value(csrf)),
		html.Button(html.Type("submit"), g.If(class != "", html.Class(class)), g.Text(label)),
	)
}
