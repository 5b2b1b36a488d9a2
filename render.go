package cocktailsgram

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/cocktailsgram/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// pageMeta collects what every layout needs: the menu, the visitor, the
// active path, and the CSRF token.
func (a *App) pageMeta(c echo.Context, title string) views.PageMeta {
	return views.PageMeta{
		SiteName:  a.Config.Name,
		Title:     title,
		Path:      c.Request().URL.Path,
		User:      a.currentUser(c),
		Menu:      a.menu,
		CSRFToken: CsrfToken(c),
		Flash:     popFlash(c),
	}
}
