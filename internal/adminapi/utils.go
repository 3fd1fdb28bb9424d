package adminapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"qrmenu/pkg/problems"
	"qrmenu/pkg/tenants"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		problems.Write(w, http.StatusBadRequest, "bad-json", "Bad Request", "request body must be valid JSON")
		return false
	}
	return true
}

// writeError maps domain errors to problem responses. Unexpected errors are logged and hidden.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ie, ok := tenants.IsInvalidSubdomain(err); ok {
		problems.WriteProblem(w, problems.Problem{
			Type:   problems.Type("invalid-subdomain"),
			Title:  "Invalid Subdomain",
			Status: http.StatusBadRequest,
			Detail: ie.Reason.Message(),
			Code:   string(ie.Reason),
		})
		return
	}
	switch {
	case errors.Is(err, tenants.ErrNameRequired):
		problems.Write(w, http.StatusBadRequest, "name-required", "Bad Request", "Restaurant name is required")
	case errors.Is(err, tenants.ErrDuplicateSubdomain):
		problems.Write(w, http.StatusConflict, "subdomain-taken", "Conflict", "Subdomain is already taken")
	case errors.Is(err, tenants.ErrNotFound):
		problems.NotFound(w, "Restaurant not found")
	default:
		a.log.Errorw("admin api", "path", r.URL.Path, "err", err)
		problems.Internal(w)
	}
}
