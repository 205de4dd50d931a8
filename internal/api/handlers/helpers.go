package handlers

import (
	"net/http"
	"strconv"

	"github.com/welth-app/welth/internal/api/middleware"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/utils"
)

// requireUserID writes a 401 and returns false when the request carries no session
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthenticated(middleware.MsgUnauthenticated))
		return "", false
	}
	return userID, true
}

// queryFlag reports whether a boolean query parameter is set ("1", "true", ...)
func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
