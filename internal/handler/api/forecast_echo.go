package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"StockPricePrediction/internal/domain/models"
	domsvc "StockPricePrediction/internal/domain/service"
	"StockPricePrediction/internal/service/cache"
	"StockPricePrediction/internal/service/ratelimit"
	xhttp "StockPricePrediction/pkg/http"
	xlogger "StockPricePrediction/pkg/logger"
)

// ForecastEchoHandler serves on-demand forecasts.
type ForecastEchoHandler struct {
	logger     *xlogger.Logger
	forecaster domsvc.Forecaster
	cache      cache.BytesCache
	ttl        time.Duration
	limiter    *ratelimit.Limiter
}

// NewForecastEchoHandler builds the handler. cache and limiter may be nil.
func NewForecastEchoHandler(logger *xlogger.Logger, f domsvc.Forecaster, c cache.BytesCache, ttl time.Duration, lim *ratelimit.Limiter) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, forecaster: f, cache: c, ttl: ttl, limiter: lim}
}

func (h *ForecastEchoHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/forecast", h.Forecast)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		return xhttp.ErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}

	req := &models.ForecastRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return xhttp.ErrorResponse(c, err)
	}
	ctx := c.Request().Context()
	key := cache.ForecastKey(req.Symbol, req.Day)

	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(ctx, key); err != nil {
			h.logger.Warn("forecast cache get error", xlogger.String("key", key), xlogger.Error(err))
		} else if ok {
			var resp models.ForecastResponse
			if err := json.Unmarshal(b, &resp); err == nil {
				resp.Cached = true
				return xhttp.SuccessResponse(c, resp)
			}
		}
	}

	res, err := h.forecaster.Forecast(ctx, req.Symbol, req.Day)
	if err != nil {
		h.logger.Error("forecast usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Int("day", req.Day),
			xlogger.Error(err),
		)
		return xhttp.ErrorResponse(c, xhttp.MapError(err, forecastErrorRules...))
	}
	resp := models.NewForecastResponse(res)

	if h.cache != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := h.cache.SetBytes(ctx, key, b, h.ttl); err != nil {
				h.logger.Warn("forecast cache set error", xlogger.String("key", key), xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, resp)
}

var forecastErrorRules = []xhttp.ErrorRule{
	xhttp.IsRule(fs.ErrNotExist, func(error) *xhttp.AppError {
		return xhttp.NotFoundError("no price history for symbol")
	}),
	xhttp.IsRule(models.ErrInvalidSeries, func(err error) *xhttp.AppError {
		return xhttp.NewAppError("ERR_INVALID_SERIES", "symbol", err.Error(), http.StatusBadRequest)
	}),
	xhttp.IsRule(models.ErrPrediction, func(err error) *xhttp.AppError {
		return xhttp.BadRequestError(err.Error())
	}),
	func(err error) (*xhttp.AppError, bool) {
		var fitErr *models.ModelFitError
		if !errors.As(err, &fitErr) {
			return nil, false
		}
		return xhttp.InternalErrorf("model %s failed to fit", fitErr.Model).WithParam("model", fitErr.Model), true
	},
}
