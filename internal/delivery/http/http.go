package http

import (
	"mediastat/internal/apperror"
	"mediastat/internal/delivery/websocket"
	"mediastat/internal/dto"
	"mediastat/internal/service"
	"mediastat/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	log       *logger.Logger
	service   *service.Service
	hub       *websocket.Hub
	gatherer  prometheus.Gatherer
}

func NewHttpAPIHandler(
	echo *echo.Echo,
	validator *goValidator.Validate,
	log *logger.Logger,
	service *service.Service,
	hub *websocket.Hub,
	gatherer prometheus.Gatherer,
) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		log:       log,
		service:   service,
		hub:       hub,
		gatherer:  gatherer,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	base := h.echo.Group("/api")
	h.SetupJobs(base)
	h.SetupStatistics(base)
	h.SetupMediaServer(base)
	h.SetupUpdate(base)
	h.SetupSettings(base)
	h.SetupWebsocket(base)
}

// respondError renders err as a BaseResponse using the status carried by apperror.
func (h *HttpAPIHandler) respondError(c echo.Context, err error) error {
	status := apperror.StatusOf(err)
	response := dto.NewBaseResponse(status, err.Error(), nil)
	response.ErrorCode = apperror.CodeOf(err)

	if status >= 500 {
		h.log.ErrorContext(c.Request().Context(), "Request failed",
			logger.ErrorField(err),
			logger.StringField("path", c.Path()),
			logger.StringField("kind", string(apperror.KindOf(err))),
		)
	}
	return c.JSON(status, response)
}

// bind decodes the request into req and validates it.
func (h *HttpAPIHandler) bind(c echo.Context, req interface{}) *dto.BaseResponse {
	if err := c.Bind(req); err != nil {
		return dto.NewBadRequestResponse("invalid request")
	}
	if err := h.validator.Struct(req); err != nil {
		return dto.NewBadRequestResponse(err.Error())
	}
	return nil
}
