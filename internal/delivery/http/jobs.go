package http

import (
	"net/http"

	"mediastat/internal/dto"
	"mediastat/internal/model"
	"mediastat/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJobs(base *echo.Group) {
	v1 := base.Group("/v1/jobs")
	{
		v1.GET("", h.GetJobs)
		v1.POST("/:id/fire", h.FireJob)
		v1.POST("/:id/cancel", h.CancelJob)
		v1.PUT("/:id/triggers", h.UpdateTriggers)
		v1.GET("/:id/history", h.GetJobHistory)
	}
}

func (h *HttpAPIHandler) GetJobs(c echo.Context) error {
	jobs, err := h.service.SchedulerService.GetAllJobs(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", jobs))
}

func (h *HttpAPIHandler) FireJob(c echo.Context) error {
	id := c.Param("id")
	started, err := h.service.SchedulerService.FireJob(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}

	data := dto.FireJobResponse{JobID: id, Started: started}
	if !started {
		return c.JSON(http.StatusOK, dto.NewSuccessResponse("Job is already running", data))
	}
	response := dto.NewBaseResponse(http.StatusAccepted, "Job started", data)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) CancelJob(c echo.Context) error {
	id := c.Param("id")
	cancelled, err := h.service.SchedulerService.CancelJob(id)
	if err != nil {
		return h.respondError(c, err)
	}

	message := "Cancellation requested"
	if !cancelled {
		message = "Job is not running"
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse(message, nil))
}

func (h *HttpAPIHandler) UpdateTriggers(c echo.Context) error {
	req := new(dto.UpdateTriggersRequest)
	if resp := h.bind(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	triggers := make([]model.TaskTrigger, 0, len(req.Triggers))
	for _, t := range req.Triggers {
		triggers = append(triggers, service.ToTaskTrigger(t))
	}

	saved, err := h.service.SchedulerService.UpdateTriggers(c.Request().Context(), c.Param("id"), triggers)
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]dto.TriggerInfo, 0, len(saved))
	for _, t := range saved {
		out = append(out, service.ToTriggerInfo(t))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Triggers updated", out))
}

func (h *HttpAPIHandler) GetJobHistory(c echo.Context) error {
	param := new(dto.JobHistoryParam)
	if resp := h.bind(c, param); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	history, err := h.service.SchedulerService.GetJobHistory(c.Request().Context(), c.Param("id"), param.Limit)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", history))
}
