package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/dto"
	"github.com/rosterhq/roster-api/internal/store"
)

// urlParamUUID parses a UUID path parameter. A malformed value maps
// to domain.ErrInvalidID.
func urlParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

// parsePageRequest reads pagination parameters from the query string.
// Missing or malformed values fall back to the defaults; bounds are
// clamped by store.NewPageRequest.
func parsePageRequest(r *http.Request) store.PageRequest {
	q := r.URL.Query()

	pageNo, _ := strconv.Atoi(q.Get("pageNo"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	dir := store.SortAsc
	if q.Get("sortDir") == "desc" {
		dir = store.SortDesc
	}

	return store.NewPageRequest(pageNo, pageSize, q.Get("sortBy"), dir)
}

// parseSearchCriteria reads the optional user search filters from the
// query string. Absent parameters impose no constraint. Returns an
// error only for values that cannot mean anything (bad role, bad date,
// bad boolean).
func parseSearchCriteria(r *http.Request) (dto.SearchCriteria, error) {
	q := r.URL.Query()

	criteria := dto.SearchCriteria{
		FullName: q.Get("fullName"),
		Email:    q.Get("email"),
		Username: q.Get("username"),
		School:   q.Get("school"),
		Phone:    q.Get("phone"),
	}

	if raw := q.Get("role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return dto.SearchCriteria{}, err
		}
		criteria.Role = &role
	}

	if raw := q.Get("fromDate"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return dto.SearchCriteria{}, err
		}
		criteria.FromDate = &d
	}
	if raw := q.Get("toDate"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return dto.SearchCriteria{}, err
		}
		criteria.ToDate = &d
	}

	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return dto.SearchCriteria{}, domain.NewValidationError("active", "must be a boolean", err)
		}
		criteria.Active = &active
	}

	return criteria, nil
}
