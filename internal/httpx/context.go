package httpx

import (
	"net/http"
	"strconv"

	"pawmart-be/internal/user"
	"pawmart-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

func actorFrom(r *http.Request) user.Actor {
	id, _ := utils.GetUserIDFromContext(r.Context())
	role := user.Role(utils.GetUserRoleFromContext(r.Context()))
	return user.Actor{ID: id, Role: role}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
