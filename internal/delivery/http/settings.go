package http

import (
	"context"
	"net/http"

	"mediastat/internal/dto"
	"mediastat/internal/model"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSettings(base *echo.Group) {
	v1 := base.Group("/v1/settings")
	v1.GET("", h.GetSettings)
	v1.PUT("", h.UpdateSettings)
}

func (h *HttpAPIHandler) GetSettings(c echo.Context) error {
	ctx := c.Request().Context()
	update, tvdb, err := h.loadSettings(ctx)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", toSettingsResponse(update, tvdb)))
}

// UpdateSettings writes the user editable fields. The update-in-progress flag
// and the TVDB sync timestamp belong to the jobs and are carried over as stored.
func (h *HttpAPIHandler) UpdateSettings(c echo.Context) error {
	req := new(dto.UpdateSettingsRequest)
	if resp := h.bind(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	ctx := c.Request().Context()
	update, tvdb, err := h.loadSettings(ctx)
	if err != nil {
		return h.respondError(c, err)
	}

	update.AutoUpdate = req.AutoUpdate
	update.UpdateTrain = req.UpdateTrain
	if err := h.service.SettingsService.SaveUpdate(ctx, update); err != nil {
		return h.respondError(c, err)
	}

	tvdb.ApiKey = req.TvdbApiKey
	if err := h.service.SettingsService.SaveTvdb(ctx, tvdb); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Settings saved", toSettingsResponse(update, tvdb)))
}

func (h *HttpAPIHandler) loadSettings(ctx context.Context) (model.UpdateSettings, model.TvdbSettings, error) {
	update, err := h.service.SettingsService.GetUpdate(ctx)
	if err != nil {
		return update, model.TvdbSettings{}, err
	}
	tvdb, err := h.service.SettingsService.GetTvdb(ctx)
	return update, tvdb, err
}

func toSettingsResponse(update model.UpdateSettings, tvdb model.TvdbSettings) dto.SettingsResponse {
	return dto.SettingsResponse{
		AutoUpdate:       update.AutoUpdate,
		UpdateTrain:      update.UpdateTrain,
		UpdateInProgress: update.UpdateInProgress,
		TvdbApiKey:       tvdb.ApiKey,
		TvdbLastUpdate:   tvdb.LastUpdate,
	}
}
