package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
)

// RunAdminAPI serves the operator status endpoint and the webhook intake.
// The webhook is an alternate trigger path for deployments without stream
// access; events from either path go through the same engine.
func (s *Server) RunAdminAPI(ctx context.Context, listen string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(s.logger))
	e.Use(middleware.Recover())

	e.GET("/admin/status", s.handleStatus)
	e.POST("/webhook/modaction", s.handleWebhookModAction)

	go func() {
		<-ctx.Done()
		if err := e.Shutdown(context.Background()); err != nil {
			s.logger.Error("admin API shutdown failed", "err", err)
		}
	}()

	if err := e.Start(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleStatus(c echo.Context) error {
	community := c.QueryParam("community")
	if community == "" {
		community = s.engine.FeedCommunity
	}
	report, err := s.engine.BuildStatusReport(
		c.Request().Context(),
		community,
		c.QueryParam("user"),
		c.QueryParam("version"),
	)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "building status report failed")
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleWebhookModAction(c echo.Context) error {
	var payload modActionPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed mod action payload")
	}
	if payload.Action == "" || payload.Community == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "mod action payload requires action and subreddit")
	}
	eventsReceived.Inc()

	if err := s.engine.ProcessModAction(c.Request().Context(), payload.event()); err != nil {
		eventsFailed.Inc()
		s.logger.Error("processing webhook mod action failed", "err", err, "action", payload.Action, "community", payload.Community, "moderator", payload.Moderator)
		return echo.NewHTTPError(http.StatusInternalServerError, "processing mod action failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"accepted": true})
}
