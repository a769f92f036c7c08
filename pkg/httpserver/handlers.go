package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/czha8903/fnplayer/pkg/audit"
	"github.com/czha8903/fnplayer/pkg/metrics"
	"github.com/czha8903/fnplayer/pkg/pathmap"
	"github.com/czha8903/fnplayer/pkg/player"
)

type okResponse struct {
	OK bool `json:"ok"`
}

type pushResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Mapped string `json:"mapped"`
}

func handlePing(c echo.Context) error {
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// handlePush maps the pushed web path, records the request and launches the
// player. The audit record is written before the launch is attempted, so a
// failed launch is still recorded.
func (s *Server) handlePush(c echo.Context) error {
	start := time.Now()
	defer func() {
		s.metrics.PushDuration.Observe(time.Since(start).Seconds())
	}()

	req := parsePushRequest(c.Request())
	ts := audit.Timestamp(s.now())
	cfg := s.config.Snapshot()

	res := pathmap.Map(req.WebPath, cfg.WebPrefix, cfg.LocalRoot)
	s.metrics.MappingTotal.WithLabelValues(string(res.Rule)).Inc()

	logger := s.logger.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	logger.Info("push received",
		"url", req.URL,
		"web_path", req.WebPath,
		"mapped", res.Path,
		"rule", res.Rule,
	)
	if req.Meta != nil {
		logger.Debug("push meta", "meta", string(req.Meta))
	}

	rec := audit.Record{
		Timestamp:  ts,
		URL:        req.URL,
		WebPath:    req.WebPath,
		Mapped:     res.Path,
		Meta:       req.Meta,
		RemoteAddr: c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	}
	if err := s.audit.Append(rec); err != nil {
		s.metrics.AuditErrors.Inc()
		logger.Error("failed to write audit record", "error", err)
	}

	if err := s.launcher.Launch(cfg.PlayerExecutable, res.Path); err != nil {
		s.metrics.PushTotal.WithLabelValues(metrics.ResultFailed).Inc()
		s.metrics.LaunchErrors.WithLabelValues(launchErrorReason(err)).Inc()
		logger.Error("failed to launch player", "executable", cfg.PlayerExecutable, "error", err)
		return c.JSON(http.StatusInternalServerError, pushResponse{
			OK:     false,
			Error:  err.Error(),
			Mapped: res.Path,
		})
	}

	s.metrics.PushTotal.WithLabelValues(metrics.ResultLaunched).Inc()
	logger.Info("player launched", "target", res.Path)
	return c.JSON(http.StatusOK, pushResponse{OK: true, Mapped: res.Path})
}

func launchErrorReason(err error) string {
	if errors.Is(err, player.ErrNotFound) {
		return "not_found"
	}
	return "spawn"
}
