package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/repository"
	"golang-market-intel/internal/intel/service"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/utils"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const defaultRunListLimit = 20

// RunHandler handles HTTP requests for pipeline runs.
type RunHandler struct {
	runRepo       repository.PipelineRunRepository
	recRepo       repository.RecommendationRepository
	intelService  service.IntelService
	reportService service.ReportService
	logger        *logger.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(
	runRepo repository.PipelineRunRepository,
	recRepo repository.RecommendationRepository,
	intelService service.IntelService,
	reportService service.ReportService,
	logger *logger.Logger,
) *RunHandler {
	return &RunHandler{
		runRepo:       runRepo,
		recRepo:       recRepo,
		intelService:  intelService,
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the run routes to the Echo group.
func (h *RunHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.TriggerRun)
	g.GET("", h.ListRuns)
	g.GET("/:id", h.GetRunByID)
}

// RegisterSectorRoutes registers the sector momentum route to the Echo
// group.
func (h *RunHandler) RegisterSectorRoutes(g *echo.Group) {
	g.GET("", h.GetRunSectors)
}

// TriggerRun godoc
// @Summary Trigger a pipeline run
// @Description Start a full pipeline run in the background. Returns 409 when a run is already in progress.
// @Tags runs
// @Produce  json
// @Success 202 {object} dto.TriggerRunResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /runs [post]
func (h *RunHandler) TriggerRun(c echo.Context) error {
	if h.intelService.IsRunning() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "A pipeline run is already in progress"})
	}

	// The run outlives the request, so it cannot inherit the request
	// context.
	utils.GoSafe(func() {
		service.RunAndReport(context.Background(), h.logger, h.intelService, h.reportService, entity.RunTriggerAPI)
	})

	return c.JSON(http.StatusAccepted, echo.Map{
		"status":  "accepted",
		"message": "Pipeline run started",
	})
}

// ListRuns godoc
// @Summary List pipeline runs
// @Description List recent pipeline runs, newest first
// @Tags runs
// @Produce  json
// @Param   limit   query   int     false   "Maximum number of results (default 20)"
// @Success 200 {array} entity.PipelineRun
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs [get]
func (h *RunHandler) ListRuns(c echo.Context) error {
	limit := defaultRunListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = parsed
	}

	runs, err := h.runRepo.List(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list runs"})
	}
	return c.JSON(http.StatusOK, runs)
}

// GetRunByID godoc
// @Summary Get a pipeline run
// @Description Get one pipeline run with its diagnostics
// @Tags runs
// @Produce  json
// @Param   id  path    string  true    "Run ID"
// @Success 200 {object} entity.PipelineRun
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs/{id} [get]
func (h *RunHandler) GetRunByID(c echo.Context) error {
	id := c.Param("id")

	run, err := h.runRepo.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Run not found"})
		}
		h.logger.Error("Failed to get run", logger.ErrorField(err), logger.StringField("run_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get run"})
	}
	return c.JSON(http.StatusOK, run)
}

// GetRunSectors godoc
// @Summary Get sector momentum
// @Description Get the per-sector aggregate view of a run, defaulting to the most recent completed run
// @Tags sectors
// @Produce  json
// @Param   run_id  query    string  false    "Run ID (default: latest completed run)"
// @Success 200 {array} dto.SectorMomentum
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sectors [get]
func (h *RunHandler) GetRunSectors(c echo.Context) error {
	ctx := c.Request().Context()

	runID := c.QueryParam("run_id")
	if runID == "" {
		run, err := h.runRepo.FindLatestCompleted(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "No completed run yet"})
			}
			h.logger.Error("Failed to find latest completed run", logger.ErrorField(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get sector momentum"})
		}
		runID = run.ID
	}

	sectors, err := h.recRepo.SectorMomentum(ctx, runID)
	if err != nil {
		h.logger.Error("Failed to get sector momentum", logger.ErrorField(err), logger.StringField("run_id", runID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get sector momentum"})
	}
	return c.JSON(http.StatusOK, sectors)
}
