package controllers

import (
	"net/http"

	"github.com/campuslabs/equiptrack-backend/api/middleware"
	"github.com/campuslabs/equiptrack-backend/api/validators"
	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// actorFromRequest assembles the audit actor from the authenticated request
// context. Outside the auth middleware the actor is anonymous.
func actorFromRequest(r *http.Request) audit.Actor {
	actor := audit.Actor{Meta: audit.MetaFromRequest(r)}
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			actor.ID = id
		}
	}
	if raw := middleware.RoleFromContext(r.Context()); raw != "" {
		actor.Role = enums.Role(raw)
	}
	return actor
}

// uuidParam parses a UUID path parameter.
func uuidParam(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// paginationFromQuery reads page/limit query parameters.
func paginationFromQuery(r *http.Request) (pkgpagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pkgpagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pkgpagination.DefaultLimit, 1, pkgpagination.MaxLimit)
	if err != nil {
		return pkgpagination.Params{}, err
	}
	return pkgpagination.Params{Page: page, Limit: limit}, nil
}
