package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/services"
	"tendertrack/templates"
)

type contextKey string

const CurrentUserKey contextKey = "currentUser"
const HeaderDataKey contextKey = "headerData"
const SidebarDataKey contextKey = "sidebarData"

// GetCurrentUser extracts the signed-in user from the request context.
// Requests without one act as an anonymous staff member.
func GetCurrentUser(r *http.Request) services.CurrentUser {
	if val, ok := r.Context().Value(CurrentUserKey).(services.CurrentUser); ok {
		return val
	}
	return services.CurrentUser{Role: services.RoleStaff}
}

// GetHeaderData extracts the pre-built HeaderData from the request context.
func GetHeaderData(r *http.Request) templates.HeaderData {
	if val, ok := r.Context().Value(HeaderDataKey).(templates.HeaderData); ok {
		return val
	}
	return templates.HeaderData{}
}

// GetSidebarData extracts the pre-built SidebarData from the request context.
func GetSidebarData(r *http.Request) templates.SidebarData {
	if val, ok := r.Context().Value(SidebarDataKey).(templates.SidebarData); ok {
		return val
	}
	return templates.SidebarData{ActivePath: r.URL.Path}
}

// currentUserFromAuth maps PocketBase's auth record to a CurrentUser.
// Superusers act as admins; users without a known role act as staff.
func currentUserFromAuth(auth *core.Record) services.CurrentUser {
	if auth == nil {
		return services.CurrentUser{Role: services.RoleStaff}
	}
	user := services.CurrentUser{
		ID:    auth.Id,
		Name:  strings.TrimSpace(auth.GetString("name")),
		Email: auth.Email(),
		Role:  auth.GetString("role"),
	}
	if auth.IsSuperuser() {
		user.ID = ""
		user.Role = services.RoleAdmin
	}
	switch user.Role {
	case services.RoleAdmin, services.RoleApprover, services.RoleStaff:
	default:
		user.Role = services.RoleStaff
	}
	if user.Name == "" {
		user.Name = user.Email
	}
	return user
}

// CurrentUserMiddleware resolves the authenticated user and builds the
// header and sidebar data, storing all three in the request context so
// handlers and templates can use them.
func CurrentUserMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		user := currentUserFromAuth(e.Auth)

		headerData := templates.HeaderData{
			UserName: user.Name,
			UserRole: user.Role,
		}

		ctx := context.WithValue(e.Request.Context(), CurrentUserKey, user)
		ctx = context.WithValue(ctx, HeaderDataKey, headerData)
		e.Request = e.Request.WithContext(ctx)

		sidebarData := BuildSidebarData(e.Request, app)
		ctx = context.WithValue(e.Request.Context(), SidebarDataKey, sidebarData)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}
