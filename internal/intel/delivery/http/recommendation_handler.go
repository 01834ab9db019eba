package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/repository"
	"golang-market-intel/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RecommendationHandler handles HTTP requests for recommendations.
type RecommendationHandler struct {
	recRepo repository.RecommendationRepository
	runRepo repository.PipelineRunRepository
	logger  *logger.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recRepo repository.RecommendationRepository, runRepo repository.PipelineRunRepository, logger *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recRepo: recRepo, runRepo: runRepo, logger: logger}
}

// RegisterRoutes registers the recommendation routes to the Echo group.
func (h *RecommendationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetLatestRecommendations)
	g.GET("/:symbol", h.GetRecommendationBySymbol)
}

// GetLatestRecommendations godoc
// @Summary Get recommendations from a run
// @Description Get the ranked recommendations for a run, defaulting to the most recent completed run
// @Tags recommendations
// @Produce  json
// @Param   run_id  query   string  false   "Run ID (default: latest completed run)"
// @Param   action  query   string  false   "Filter by action (BUY, SELL, HOLD, INSUFFICIENT_DATA)"
// @Param   limit   query   int     false   "Maximum number of results"
// @Success 200 {array} entity.Recommendation
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /recommendations [get]
func (h *RecommendationHandler) GetLatestRecommendations(c echo.Context) error {
	ctx := c.Request().Context()

	runID := c.QueryParam("run_id")
	if runID == "" {
		run, err := h.runRepo.FindLatestCompleted(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "No completed run yet"})
			}
			h.logger.Error("Failed to find latest completed run", logger.ErrorField(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get recommendations"})
		}
		runID = run.ID
	}

	action := entity.Action(c.QueryParam("action"))
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = parsed
	}

	recs, err := h.recRepo.FindByRunID(ctx, runID, action, limit)
	if err != nil {
		h.logger.Error("Failed to get recommendations", logger.ErrorField(err), logger.StringField("run_id", runID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get recommendations"})
	}
	return c.JSON(http.StatusOK, recs)
}

// GetRecommendationBySymbol godoc
// @Summary Get the latest recommendation for a symbol
// @Description Get the most recent recommendation for a single symbol across all runs
// @Tags recommendations
// @Produce  json
// @Param   symbol  path    string  true    "Symbol code"
// @Success 200 {object} entity.Recommendation
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /recommendations/{symbol} [get]
func (h *RecommendationHandler) GetRecommendationBySymbol(c echo.Context) error {
	symbol := c.Param("symbol")

	rec, err := h.recRepo.FindLatestForSymbol(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No recommendation for symbol"})
		}
		h.logger.Error("Failed to get recommendation", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get recommendation"})
	}
	return c.JSON(http.StatusOK, rec)
}
