package http

import (
	"mediastat/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupWebsocket(base *echo.Group) {
	base.GET("/ws", h.ServeWebsocket)
}

// ServeWebsocket hands the connection to the hub. A failed upgrade has
// already written its own response.
func (h *HttpAPIHandler) ServeWebsocket(c echo.Context) error {
	if err := h.hub.ServeWS(c.Response(), c.Request()); err != nil {
		h.log.WarnContext(c.Request().Context(), "Websocket upgrade failed", logger.ErrorField(err))
	}
	return nil
}
