package memrise

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const sessionCookieName = "sessionid_2"

// cookie jars do not expose expiry, so persisted sessions carry their own
// save time and are discarded after this long
const sessionMaxAge = time.Hour * 24 * 14

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type storedSession struct {
	SavedAt time.Time      `json:"saved_at"`
	Cookies []storedCookie `json:"cookies"`
}

// SaveSession persists the jar's cookies so a later run can skip the
// login handshake. Purely a convenience, failures are reported but a
// caller can always just log in again.
func (c *Client) SaveSession(path string) error {
	jar := c.Http.GetClient().Jar
	if jar == nil {
		return nil
	}

	session := storedSession{SavedAt: time.Now()}
	for _, cookie := range jar.Cookies(c.BaseUrl) {
		session.Cookies = append(session.Cookies, storedCookie{
			Name:  cookie.Name,
			Value: cookie.Value,
		})
	}

	contents, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0600)
}

// RestoreSession loads a previously saved session into the cookie jar and
// reports whether it looked usable. It fails soft: a missing, corrupt,
// expired or incomplete session file is deleted and treated as "no
// session", never an error.
func (c *Client) RestoreSession(path string) bool {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false
	}
	if err != nil {
		slog.Warn("unable to read session file", "path", path, "err", err)
		deleteSessionFile(path)
		return false
	}

	var session storedSession
	err = json.Unmarshal(contents, &session)
	if err != nil {
		slog.Warn("session file is corrupt", "path", path, "err", err)
		deleteSessionFile(path)
		return false
	}
	if time.Since(session.SavedAt) > sessionMaxAge {
		slog.Info("stored session has expired", "path", path)
		deleteSessionFile(path)
		return false
	}

	var cookies []*http.Cookie
	hasSession := false
	hasCsrf := false
	for _, stored := range session.Cookies {
		switch stored.Name {
		case sessionCookieName:
			hasSession = true
		case csrfCookieName:
			hasCsrf = true
		}
		cookies = append(cookies, &http.Cookie{Name: stored.Name, Value: stored.Value})
	}
	if !hasSession || !hasCsrf {
		slog.Info("stored session is missing required cookies", "path", path)
		deleteSessionFile(path)
		return false
	}

	c.Http.GetClient().Jar.SetCookies(c.BaseUrl, cookies)
	return true
}

func deleteSessionFile(path string) {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("unable to delete session file", "path", path, "err", err)
	}
}
