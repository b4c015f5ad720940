package http

import (
	"net/http"

	"mediastat/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupStatistics(base *echo.Group) {
	v1 := base.Group("/v1/statistics")
	v1.GET("/movies", h.GetMovieStatistics)
	v1.GET("/shows", h.GetShowStatistics)
}

func (h *HttpAPIHandler) GetMovieStatistics(c echo.Context) error {
	param := new(dto.StatisticsParam)
	if resp := h.bind(c, param); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	stats, err := h.service.StatisticService.GetMovieStatistics(c.Request().Context(), param.LibraryIDs)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", stats))
}

func (h *HttpAPIHandler) GetShowStatistics(c echo.Context) error {
	param := new(dto.StatisticsParam)
	if resp := h.bind(c, param); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	stats, err := h.service.StatisticService.GetShowStatistics(c.Request().Context(), param.LibraryIDs)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", stats))
}
