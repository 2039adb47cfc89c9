package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalog-discounts/api/middleware"
	"github.com/angelmondragon/catalog-discounts/api/responses"
	"github.com/angelmondragon/catalog-discounts/pkg/instance"
)

type pingResponse struct {
	Scope    string `json:"scope"`
	Status   string `json:"status"`
	Instance string `json:"instance"`
	AdminID  string `json:"admin_id,omitempty"`
	Role     string `json:"role,omitempty"`
}

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pingResponse{Scope: "public", Status: "ok", Instance: instance.GetID()})
	}
}

// AdminPing echoes the authenticated actor so operators can check a token.
func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := pingResponse{Scope: "admin", Status: "ok", Instance: instance.GetID()}
		if actor, ok := middleware.ActorFromContext(r.Context()); ok {
			resp.AdminID = actor.AdminID
			resp.Role = actor.Role.String()
		}
		responses.WriteSuccess(w, resp)
	}
}
