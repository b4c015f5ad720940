package http

import (
	"net/http"

	"mediastat/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupUpdate(base *echo.Group) {
	base.GET("/v1/update/check", h.CheckForUpdate)
}

func (h *HttpAPIHandler) CheckForUpdate(c echo.Context) error {
	result, err := h.service.UpdateService.CheckForUpdate(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}
