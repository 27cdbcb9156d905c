package httpx

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "storefront/internal/errors"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps (page-1)*limit within a 32-bit offset.
	MaxPage = math.MaxInt32 / MaxPageLimit
)

// URLParamID parses a positive integer path parameter.
func URLParamID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a positive integer",
		})
	}
	return id, nil
}

// QueryID parses an optional positive integer query parameter; zero means absent.
func QueryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a positive integer",
		})
	}
	return id, nil
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination reads page and limit, defaulting to the first page of
// DefaultPageLimit items.
func Pagination(r *http.Request) (Page, error) {
	p := Page{Page: 1, Limit: DefaultPageLimit}
	var details []apperrors.ValidationDetail

	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPage {
			details = append(details, apperrors.ValidationDetail{Field: "page", Message: "page must be between 1 and " + strconv.Itoa(MaxPage)})
		} else {
			p.Page = n
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageLimit {
			details = append(details, apperrors.ValidationDetail{Field: "limit", Message: "limit must be between 1 and " + strconv.Itoa(MaxPageLimit)})
		} else {
			p.Limit = n
		}
	}

	if len(details) > 0 {
		return Page{}, apperrors.NewValidationError("invalid pagination", details...)
	}
	return p, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (time.Time, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a date formatted as YYYY-MM-DD",
		})
	}
	return t, true, nil
}
