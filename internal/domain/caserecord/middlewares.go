package caserecord

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/CodeTanzania/ewea-case/internal/party"
)

func readBody(c echo.Context) (map[string]interface{}, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	_ = c.Request().Body.Close()

	body := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			// leave malformed bodies for the handler's bind to reject
			c.Request().Body = io.NopCloser(bytes.NewReader(raw))
			return nil, nil
		}
	}
	return body, nil
}

func writeBody(c echo.Context, body map[string]interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(raw))
	c.Request().ContentLength = int64(len(raw))
	return nil
}

// EnsureReporter defaults the reporter on a submitted case to the
// authenticated party when the client leaves it out.
func EnsureReporter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readBody(c)
		if err != nil {
			return err
		}
		if body != nil {
			if reporter, ok := body["reporter"]; !ok || reporter == nil {
				if p := party.FromContext(c.Request().Context()); p != nil {
					body["reporter"] = p
				}
			}
			if err := writeBody(c, body); err != nil {
				return err
			}
		}
		return next(c)
	}
}

// EnsureResolver completes updates that mark a case resolved. Any of
// resolvedAt, completedAt or resolver in the body indicates
// resolution; the authenticated party is stamped as resolver and
// resolvedAt is set to the current time when the client left them out.
func EnsureResolver(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readBody(c)
		if err != nil {
			return err
		}
		if body != nil {
			if present(body, "resolvedAt") || present(body, "completedAt") || present(body, "resolver") {
				if !present(body, "resolver") {
					if p := party.FromContext(c.Request().Context()); p != nil {
						body["resolver"] = p
					}
				}
				if !present(body, "resolvedAt") {
					body["resolvedAt"] = time.Now().UTC().Format(time.RFC3339)
				}
			}
			if err := writeBody(c, body); err != nil {
				return err
			}
		}
		return next(c)
	}
}

func present(body map[string]interface{}, key string) bool {
	v, ok := body[key]
	return ok && v != nil
}
