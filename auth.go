package cocktailsgram

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/cocktailsgram/views"
)

const userIDKey = "user_id"

// sessionUserID returns the signed-in user's ID, or 0.
func sessionUserID(c echo.Context) int64 {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return 0
	}
	id, _ := sess.Values[userIDKey].(int64)
	return id
}

// IsAuthenticated reports whether the request carries a signed-in session.
// It is the flag the header menu is filtered by.
func IsAuthenticated(c echo.Context) bool {
	return sessionUserID(c) != 0
}

// currentUser loads the signed-in user, caching it on the context.
// It returns nil for anonymous visitors and for sessions whose user is gone.
func (a *App) currentUser(c echo.Context) *User {
	if u, ok := c.Get("user").(*User); ok {
		return u
	}
	id := sessionUserID(c)
	if id == 0 {
		return nil
	}
	u, err := a.Store.GetUser(id)
	if err != nil {
		return nil
	}
	c.Set("user", &u)
	return &u
}

func setUserSession(c echo.Context, id int64) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[userIDKey] = id
	return sess.Save(c.Request(), c.Response())
}

func clearUserSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// addFlash queues a one-shot message for the next rendered page.
func addFlash(c echo.Context, msg string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return
	}
	sess.AddFlash(msg)
	_ = sess.Save(c.Request(), c.Response())
}

// popFlash returns and clears the pending flash messages.
func popFlash(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	_ = sess.Save(c.Request(), c.Response())
	msgs := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return strings.Join(msgs, " ")
}

func (a *App) handleLoginForm(c echo.Context) error {
	if IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/recipes/")
	}
	return Render(c, views.Login(a.pageMeta(c, "Вход"), "", false))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.metrics.loginFailures.Inc()
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	email := c.FormValue("email")
	u, err := a.Store.Authenticate(email, c.FormValue("password"))
	if errors.Is(err, ErrInvalidCredentials) {
		a.loginLimiter.Record(ip)
		a.metrics.loginFailures.Inc()
		return RenderStatus(c, http.StatusUnauthorized, views.Login(a.pageMeta(c, "Вход"), email, true))
	}
	if err != nil {
		return err
	}
	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/recipes/")
}

func (a *App) handleSignupForm(c echo.Context) error {
	if IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/recipes/")
	}
	return Render(c, views.Signup(a.pageMeta(c, "Регистрация"), views.SignupValues{}, ""))
}

func (a *App) handleSignup(c echo.Context) error {
	in := SignupInput{
		Email:     c.FormValue("email"),
		Username:  c.FormValue("username"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Password:  c.FormValue("password"),
	}
	values := views.SignupValues{Email: in.Email, Username: in.Username, FirstName: in.FirstName, LastName: in.LastName}
	u, err := a.Store.CreateUser(in)
	if errors.Is(err, ErrDuplicate) {
		return RenderStatus(c, http.StatusConflict, views.Signup(a.pageMeta(c, "Регистрация"), values,
			"Пользователь с такой почтой или именем уже существует"))
	}
	if err != nil {
		var ve validationError
		if errors.As(err, &ve) {
			return RenderStatus(c, http.StatusBadRequest, views.Signup(a.pageMeta(c, "Регистрация"), values, ve.Error()))
		}
		return err
	}
	a.metrics.signups.Inc()
	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	addFlash(c, "Добро пожаловать, "+u.FirstName+"!")
	return c.Redirect(http.StatusSeeOther, "/recipes/")
}

func handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/recipes/")
}
