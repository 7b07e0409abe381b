package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Client drives a handler the way a browser would: form posts, no redirect
// following, and a cookie jar keyed by cookie name.
type Client struct {
	handler http.Handler
	cookies map[string]*http.Cookie
	// Accept is sent on every request when set
	Accept string
}

// NewClient creates a client for handler
func NewClient(handler http.Handler) *Client {
	return &Client{handler: handler, cookies: make(map[string]*http.Cookie)}
}

// Get issues a GET request
func (c *Client) Get(path string) *httptest.ResponseRecorder {
	return c.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostForm issues a urlencoded form POST
func (c *Client) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// Do sends req with the jar's cookies and records the cookies the response sets
func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	if c.Accept != "" {
		req.Header.Set("Accept", c.Accept)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return w
}

// Cookie returns the stored cookie with the given name, or nil
func (c *Client) Cookie(name string) *http.Cookie {
	return c.cookies[name]
}

// SetCookie stores cookie as if a response had set it
func (c *Client) SetCookie(cookie *http.Cookie) {
	c.cookies[cookie.Name] = cookie
}

// DecodeJSON decodes the response body into a value of type T
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "response body: %s", w.Body.String())
	return v
}

// RequireRedirect asserts a 303 to location
func RequireRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, w.Code, "response body: %s", w.Body.String())
	require.Equal(t, location, w.Header().Get("Location"))
}
