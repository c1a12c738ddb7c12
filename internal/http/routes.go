package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "fairwork.com/fairwork/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.POST("/requesters", h.RegisterRequester)
	e.POST("/tasks", h.RegisterTask)
	e.POST("/duration", h.ReportDuration)
	e.GET("/duration/latest", h.LatestReport)
}
