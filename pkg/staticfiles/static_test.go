package staticfiles

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserscript_PushURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{"127.0.0.1", "http://127.0.0.1:8080/push"},
		{"0.0.0.0", "http://127.0.0.1:8080/push"},
		{"", "http://127.0.0.1:8080/push"},
		{"192.168.1.20", "http://192.168.1.20:8080/push"},
		{"::1", "http://[::1]:8080/push"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Userscript{Host: tt.host, Port: 8080}.PushURL(), "host %q", tt.host)
	}
}

func TestUserscript_Render(t *testing.T) {
	t.Parallel()

	body, err := Userscript{Host: "0.0.0.0", Port: 18080, Version: "1.2.3"}.Render()
	require.NoError(t, err)

	src := string(body)
	assert.Contains(t, src, "// @version      1.2.3")
	assert.Contains(t, src, "// @connect      127.0.0.1")
	assert.Contains(t, src, `const PUSH_URL = "http://127.0.0.1:18080/push";`)
	assert.Contains(t, src, `const MARKER = "/NAS 的文件/";`)
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	e := echo.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, RegisterRoutes(e, Userscript{Host: "127.0.0.1", Port: 8080}, logger))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, UserscriptPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/javascript; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), "==UserScript==")
}
