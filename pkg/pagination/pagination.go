package pagination

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit int
	Skip  int
}

// FromContext extracts pagination parameters from the echo context.
// Both limit/skip and page are honoured; page wins when both appear.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	if skip < 0 {
		skip = 0
	}

	if page, _ := strconv.Atoi(c.QueryParam("page")); page > 0 {
		skip = (page - 1) * limit
	}

	return Params{Limit: limit, Skip: skip}
}

// Page returns the 1-based page number for the current params.
func (p Params) Page() int {
	return p.Skip/p.Limit + 1
}

// Response is the list envelope returned by every list endpoint.
type Response struct {
	Data         interface{} `json:"data"`
	Total        int         `json:"total"`
	Limit        int         `json:"limit"`
	Skip         int         `json:"skip"`
	Page         int         `json:"page"`
	Pages        int         `json:"pages"`
	LastModified *time.Time  `json:"lastModified,omitempty"`
}

func NewResponse(data interface{}, total int, p Params, lastModified *time.Time) *Response {
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return &Response{
		Data:         data,
		Total:        total,
		Limit:        p.Limit,
		Skip:         p.Skip,
		Page:         p.Page(),
		Pages:        pages,
		LastModified: lastModified,
	}
}
