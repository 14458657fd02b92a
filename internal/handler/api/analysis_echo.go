package api

import (
	"net/http"
	"time"

	models "CoinPilot/internal/domain/models"
	domrepo "CoinPilot/internal/domain/repository"
	"CoinPilot/internal/jobs"
	"CoinPilot/internal/service/ratelimit"
	"CoinPilot/internal/usecase"
	xhttp "CoinPilot/pkg/http"
	xlogger "CoinPilot/pkg/logger"
	"CoinPilot/pkg/queue"

	"github.com/labstack/echo/v4"
)

// Manual refresh endpoint budget: small burst, slow refill per symbol.
const (
	refreshBurst  = 3.0
	refreshRefill = 0.2 // tokens per second
)

// AnalysisEchoHandler exposes the analysis cache and decision engine over
// Echo following Clean Architecture.
type AnalysisEchoHandler struct {
	logger             *xlogger.Logger
	resolver           *usecase.Resolver
	advisor            *usecase.Advisor
	archive            domrepo.ReportArchive // optional
	refreshQ           queue.QueueService    // optional; nil falls back to inline refresh
	limiter            *ratelimit.Limiter
	defaultPersonality string
}

func NewAnalysisEchoHandler(
	logger *xlogger.Logger,
	resolver *usecase.Resolver,
	advisor *usecase.Advisor,
	archive domrepo.ReportArchive,
	refreshQ queue.QueueService,
	defaultPersonality string,
) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{
		logger:             logger,
		resolver:           resolver,
		advisor:            advisor,
		archive:            archive,
		refreshQ:           refreshQ,
		limiter:            ratelimit.New(),
		defaultPersonality: defaultPersonality,
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analysis)
	g.GET("/decision", h.Decision)
	g.POST("/refresh", h.Refresh)
	g.GET("/hotlist", h.HotList)
	g.GET("/history", h.History)
	e.GET("/healthz", h.Health)
}

// Analysis serves the cached-or-computed signal report for one symbol.
func (h *AnalysisEchoHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.resolver.Get(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("analysis resolve error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("analysis failed: %v", err))
	}
	return xhttp.SuccessResponse(c, report)
}

// Decision runs resolution plus the decision engine.
func (h *AnalysisEchoHandler) Decision(c echo.Context) error {
	req := &models.DecisionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	personality := req.Personality
	if personality == "" {
		personality = h.defaultPersonality
	}

	decision, err := h.advisor.Decide(c.Request().Context(), req.Symbol, personality)
	if err != nil {
		h.logger.Error("decision error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("decision failed: %v", err))
	}
	return xhttp.SuccessResponse(c, decision)
}

// Refresh forces a recomputation bypassing the freshness check, still
// subject to single-flight. With a queue configured the request is
// accepted asynchronously; otherwise it runs inline.
func (h *AnalysisEchoHandler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.limiter.Allow("refresh:"+req.Symbol, refreshBurst, refreshRefill) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "refresh rate limit exceeded")
	}

	ctx := c.Request().Context()
	if h.refreshQ != nil {
		if err := h.refreshQ.PublishMessage(ctx, jobs.RefreshMessageType, jobs.RefreshPayload{Symbol: req.Symbol}); err != nil {
			h.logger.Error("refresh enqueue error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("refresh enqueue failed: %v", err))
		}
		return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{"symbol": req.Symbol, "status": "queued"})
	}

	if _, err := h.resolver.ForceRefresh(ctx, req.Symbol); err != nil {
		h.logger.Error("refresh error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("refresh failed: %v", err))
	}
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{"symbol": req.Symbol, "status": "refreshed"})
}

// HotList returns the stored entries for the configured hot-list.
func (h *AnalysisEchoHandler) HotList(c echo.Context) error {
	entries, err := h.resolver.HotListStatus(c.Request().Context())
	if err != nil {
		h.logger.Error("hotlist status error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("hotlist status failed: %v", err))
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

// History queries the report archive.
func (h *AnalysisEchoHandler) History(c echo.Context) error {
	if h.archive == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("report archive not configured"))
	}
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	from := xhttp.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(req.To, now)

	reports, err := h.archive.Query(c.Request().Context(), req.Symbol, from, to, req.Limit)
	if err != nil {
		h.logger.Error("history query error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("history query failed: %v", err))
	}
	return xhttp.ListResponse(c, reports, int64(len(reports)))
}

// Health reports liveness.
func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
