package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/handlers/render"
	"github.com/nkiryanov/gym/internal/handlers/userctx"
	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/models"
)

// Principal set by auth middleware. Zero user on public routes
func principal(r *http.Request) models.User {
	u, _ := userctx.Principal(r.Context())
	return u
}

// Render error and log it if it is the server fault.
// Client errors are expected and are seen in request log anyway
func renderError(w http.ResponseWriter, r *http.Request, l logger.Logger, err error) {
	if code := render.Error(w, err); code >= http.StatusInternalServerError {
		l.Error("request failed", "method", r.Method, "uri", r.URL.Path, "error", err)
	}
}

// Required boolean query parameter
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, apperrors.MissingParameter(name)
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.Validation(fmt.Sprintf("%s: must be true or false", name))
	}
	return v, nil
}

// Optional date query parameter, nil if absent
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	return parseDate(name, &raw)
}

func parseDate(name string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}

	d, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("%s: must be a date in format YYYY-MM-DD", name))
	}
	return &d, nil
}

// Common part of trainings filters: period and type
func trainingFilter(r *http.Request) (models.TrainingFilter, error) {
	var (
		f   models.TrainingFilter
		err error
	)

	if f.PeriodFrom, err = queryDate(r, "periodFrom"); err != nil {
		return f, err
	}
	if f.PeriodTo, err = queryDate(r, "periodTo"); err != nil {
		return f, err
	}
	f.TrainingType = r.URL.Query().Get("trainingType")

	return f, nil
}
