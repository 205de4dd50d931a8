package handlers

import (
	"net/http"

	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/utils"
	"github.com/welth-app/welth/internal/services"
)

// AccountHandler exposes the caller's entitlement
type AccountHandler struct {
	accountService *services.AccountService
	logger         *logger.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService, log *logger.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         log,
	}
}

// Me returns the tier and free-evaluation usage of the caller
// @Summary Entitlement summary
// @Description Premium flag, tier and free evaluations left
// @Tags Account
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} utils.ErrorResponse "Unauthenticated"
// @Failure 500 {object} utils.ErrorResponse "Failed to load usage"
// @Security BearerAuth
// @Router /api/me [get]
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	status, err := h.accountService.Status(r.Context(), userID)
	if err != nil {
		utils.WriteErr(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, status)
}
