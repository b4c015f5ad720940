package http

import (
	"net/http"

	"mediastat/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupMediaServer(base *echo.Group) {
	v1 := base.Group("/v1/mediaserver")
	v1.POST("/token", h.GetMediaServerToken)
	v1.GET("/status", h.GetMediaServerStatus)
}

func (h *HttpAPIHandler) GetMediaServerToken(c echo.Context) error {
	req := new(dto.MediaServerLoginRequest)
	if resp := h.bind(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	token, err := h.service.MediaServerService.GetToken(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Logged in", token))
}

func (h *HttpAPIHandler) GetMediaServerStatus(c echo.Context) error {
	status, err := h.service.MediaServerService.GetStatus(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", status))
}
