package api

import (
	"errors"
	"strings"
	"time"

	models "TrendCast/internal/domain/models"
	"TrendCast/internal/usecase"
	xhttp "TrendCast/pkg/http"
	xlogger "TrendCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastHandler exposes the forecasting and training API over Echo.
type ForecastHandler struct {
	logger    *xlogger.Logger
	forecasts *usecase.ForecastUseCase
	trainer   *usecase.TrainUseCase
	bars      *usecase.BarsUseCase
}

func NewForecastHandler(logger *xlogger.Logger, forecasts *usecase.ForecastUseCase, trainer *usecase.TrainUseCase, bars *usecase.BarsUseCase) *ForecastHandler {
	return &ForecastHandler{logger: logger, forecasts: forecasts, trainer: trainer, bars: bars}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/predict", h.Predict)
	g.POST("/montecarlo", h.MonteCarlo)
	g.POST("/train", h.Train)
	g.GET("/bars", h.Bars)
	g.POST("/bars", h.IngestBars)
	g.GET("/health", h.Health)
}

func (h *ForecastHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Symbol = strings.ToUpper(req.Symbol)

	res, err := h.forecasts.Predict(c.Request().Context(), req)
	if err != nil {
		return h.usecaseError(c, "predict", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) MonteCarlo(c echo.Context) error {
	req := &models.MonteCarloRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Symbol = strings.ToUpper(req.Symbol)

	res, err := h.forecasts.MonteCarlo(c.Request().Context(), req)
	if err != nil {
		return h.usecaseError(c, "montecarlo", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Train(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Symbol = strings.ToUpper(req.Symbol)

	report, err := h.trainer.Train(c.Request().Context(), req.Symbol, req.Epochs)
	if err != nil {
		return h.usecaseError(c, "train", err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ForecastHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Symbol = strings.ToUpper(req.Symbol)

	var (
		bars []models.Bar
		err  error
	)
	if req.From != "" && req.To != "" {
		from, _ := time.Parse(time.DateOnly, req.From)
		to, _ := time.Parse(time.DateOnly, req.To)
		if to.Before(from) {
			return xhttp.BadRequestResponse(c, "to must not be before from")
		}
		bars, err = h.bars.GetRange(c.Request().Context(), req.Symbol, from, to)
	} else {
		bars, err = h.bars.GetLatest(c.Request().Context(), req.Symbol, req.Limit)
	}
	if err != nil {
		return h.usecaseError(c, "bars", err)
	}
	return xhttp.SuccessResponse(c, map[string]any{
		"symbol": req.Symbol,
		"count":  len(bars),
		"bars":   bars,
	})
}

// IngestBars backfills historical bars, e.g. from an external downloader.
func (h *ForecastHandler) IngestBars(c echo.Context) error {
	req := &models.IngestBarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Symbol = strings.ToUpper(req.Symbol)
	for i := range req.Bars {
		req.Bars[i].Symbol = req.Symbol
	}

	n, err := h.bars.Ingest(c.Request().Context(), req.Bars)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()))
	}
	return xhttp.SuccessResponse(c, map[string]any{
		"symbol":   req.Symbol,
		"ingested": n,
	})
}

func (h *ForecastHandler) Health(c echo.Context) error {
	if err := h.bars.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage unavailable"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ForecastHandler) usecaseError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrModelNotTrained):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	case errors.Is(err, usecase.ErrInsufficientHistory):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()))
	default:
		h.logger.Error(op+" usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}
