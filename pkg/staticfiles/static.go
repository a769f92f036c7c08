// Package staticfiles serves the browser userscript that sends pushes to the
// bridge.
package staticfiles

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"text/template"

	"github.com/labstack/echo/v4"

	"github.com/czha8903/fnplayer/pkg/pathmap"
)

// UserscriptPath is the route the userscript is served under. The
// .user.js suffix makes userscript managers offer to install it.
const UserscriptPath = "/userscript/fnplayer.user.js"

//go:embed fnplayer.user.js.tmpl
var userscriptSource string

var userscriptTemplate = template.Must(template.New("userscript").Parse(userscriptSource))

// Userscript describes the bridge the script talks to.
type Userscript struct {
	Host    string // host the bridge listens on
	Port    int
	Version string
}

// BrowserHost returns the host a browser on the same machine should use.
// Wildcard listen addresses are not dialable, so they map to loopback.
func (u Userscript) BrowserHost() string {
	switch u.Host {
	case "", "0.0.0.0", "::", "[::]":
		return "127.0.0.1"
	}
	return u.Host
}

// PushURL returns the /push endpoint the script posts to.
func (u Userscript) PushURL() string {
	return "http://" + net.JoinHostPort(u.BrowserHost(), strconv.Itoa(u.Port)) + "/push"
}

// Render produces the userscript source.
func (u Userscript) Render() ([]byte, error) {
	var buf bytes.Buffer
	err := userscriptTemplate.Execute(&buf, map[string]string{
		"Version":     u.Version,
		"ConnectHost": u.BrowserHost(),
		"PushURL":     u.PushURL(),
		"Marker":      pathmap.FallbackMarker,
	})
	if err != nil {
		return nil, fmt.Errorf("render userscript: %w", err)
	}
	return buf.Bytes(), nil
}

// RegisterRoutes serves the rendered userscript. It is rendered once, for
// the address the server was started with.
func RegisterRoutes(e *echo.Echo, u Userscript, logger *slog.Logger) error {
	body, err := u.Render()
	if err != nil {
		return err
	}
	e.GET(UserscriptPath, func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", body)
	})
	logger.Info("userscript available", "url", "http://"+net.JoinHostPort(u.BrowserHost(), strconv.Itoa(u.Port))+UserscriptPath)
	return nil
}
