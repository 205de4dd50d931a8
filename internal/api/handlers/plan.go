package handlers

import (
	"net/http"

	"github.com/welth-app/welth/internal/api/dto"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/utils"
	"github.com/welth-app/welth/internal/services"
)

// PlanHandler serves habit plans and their tracking view
type PlanHandler struct {
	planService *services.PlanService
	logger      *logger.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService *services.PlanService, log *logger.Logger) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		logger:      log,
	}
}

// Get returns the latest plan, or every plan with ?all=1
// @Summary Habit plans
// @Description Latest plan; with all=1 every plan newest first (premium)
// @Tags Plans
// @Produce json
// @Param all query bool false "Return every plan"
// @Success 200 {object} dto.PlanResponse
// @Success 200 {object} dto.PlansResponse
// @Failure 401 {object} utils.ErrorResponse "Unauthenticated"
// @Failure 403 {object} utils.ErrorResponse "Premium required"
// @Failure 404 {object} utils.ErrorResponse "No plan yet"
// @Security BearerAuth
// @Router /api/plans [get]
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if queryFlag(r, "all") {
		plans, err := h.planService.List(r.Context(), userID)
		if err != nil {
			h.logFailure(err, userID)
			utils.WriteErr(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, dto.PlansResponse{Plans: plans})
		return
	}

	p, err := h.planService.Latest(r.Context(), userID)
	if err != nil {
		h.logFailure(err, userID)
		utils.WriteErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dto.PlanResponse{Plan: p})
}

// Progress returns the tracking series and deltas of one plan
// @Summary Plan progress
// @Description Metric series and delta of the selected plan against its baseline (premium)
// @Tags Plans
// @Produce json
// @Param planId query string false "Selected plan, defaults to the newest"
// @Success 200 {object} tracking.Progress
// @Failure 401 {object} utils.ErrorResponse "Unauthenticated"
// @Failure 403 {object} utils.ErrorResponse "Premium required"
// @Failure 404 {object} utils.ErrorResponse "Unknown plan"
// @Security BearerAuth
// @Router /api/plans/progress [get]
func (h *PlanHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	progress, err := h.planService.Progress(r.Context(), userID, r.URL.Query().Get("planId"))
	if err != nil {
		h.logFailure(err, userID)
		utils.WriteErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, progress)
}

func (h *PlanHandler) logFailure(err error, userID string) {
	if errors.Code(err) == errors.ErrCodeDatabase {
		h.logger.With("user_id", userID).ErrorWithErr(err, "Failed to load plans")
	}
}
