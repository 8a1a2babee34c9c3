package api

import (
	models "titandash/internal/domain/models"
	"titandash/internal/service/dashboard"
	"titandash/internal/service/marketdata"
	"titandash/internal/service/portfolio"
	xhttp "titandash/pkg/http"
	"titandash/pkg/http/middleware"
	xlogger "titandash/pkg/logger"
	"titandash/pkg/util"

	"github.com/labstack/echo/v4"
)

// defaultUserID serves unauthenticated deployments where no bearer token
// middleware is installed.
const defaultUserID = "default"

// DashboardEchoHandler exposes the dashboard, portfolio and market endpoints.
type DashboardEchoHandler struct {
	logger    *xlogger.Logger
	dash      *dashboard.Service
	portfolio *portfolio.Service
	market    *marketdata.Service
	auth      echo.MiddlewareFunc
}

type HandlerOption func(*DashboardEchoHandler)

// WithAuth guards all routes with the given middleware.
func WithAuth(mw echo.MiddlewareFunc) HandlerOption {
	return func(h *DashboardEchoHandler) {
		h.auth = mw
	}
}

func NewDashboardEchoHandler(logger *xlogger.Logger, dash *dashboard.Service, pf *portfolio.Service, md *marketdata.Service, opts ...HandlerOption) *DashboardEchoHandler {
	h := &DashboardEchoHandler{logger: logger, dash: dash, portfolio: pf, market: md}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.auth != nil {
		g.Use(h.auth)
	}
	g.GET("/dashboard/comprehensive-real", h.ComprehensiveDashboard)
	g.GET("/dashboard/quick-stats", h.QuickStats)
	g.GET("/portfolio/advanced", h.AdvancedPortfolio)
	g.GET("/portfolio/transactions", h.Transactions)
	g.GET("/market/prices", h.Prices)
	g.GET("/market/fear-greed", h.FearGreed)
}

func (h *DashboardEchoHandler) ComprehensiveDashboard(c echo.Context) error {
	res, err := h.dash.GetComprehensiveDashboard(c.Request().Context(), userID(c))
	if err != nil {
		h.logger.Error("comprehensive dashboard failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, "dashboard unavailable")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) QuickStats(c echo.Context) error {
	res, err := h.dash.GetQuickStats(c.Request().Context(), userID(c))
	if err != nil {
		h.logger.Error("quick stats failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, "quick stats unavailable")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) AdvancedPortfolio(c echo.Context) error {
	res, err := h.portfolio.GetAdvancedPortfolio(c.Request().Context(), userID(c))
	if err != nil {
		h.logger.Error("advanced portfolio failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, "portfolio unavailable")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Transactions(c echo.Context) error {
	req := &models.TransactionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.portfolio.GetTransactions(c.Request().Context(), userID(c), req.Limit)
	if err != nil {
		h.logger.Error("transactions failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, "transactions unavailable")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := util.SplitCSV(req.Symbols)
	if len(symbols) == 0 {
		return xhttp.BadRequestResponse(c, &xhttp.ValidationError{
			Field:   "symbols",
			Message: "symbols must not be empty",
		})
	}

	res, err := h.market.FetchRealTimePrices(c.Request().Context(), symbols)
	if err != nil {
		h.logger.Error("prices failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, "market data unavailable")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) FearGreed(c echo.Context) error {
	res, err := h.market.GetFearGreedIndex(c.Request().Context())
	if err != nil {
		h.logger.Error("fear greed failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, "sentiment unavailable")
	}
	return xhttp.SuccessResponse(c, res)
}

func userID(c echo.Context) string {
	if v, ok := c.Get(middleware.UserIDKey).(string); ok && v != "" {
		return v
	}
	return defaultUserID
}
