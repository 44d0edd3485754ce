package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"grc-center/internal/database"
	"grc-center/internal/services"
)

// page reads skip and limit; limit defaults to services.DefaultListLimit.
func page(c *gin.Context) (database.Page, error) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return database.Page{}, err
	}
	limit, err := queryInt(c, "limit", services.DefaultListLimit)
	if err != nil {
		return database.Page{}, err
	}
	if skip < 0 {
		return database.Page{}, &services.ValidationError{Field: "skip", Message: "must not be negative"}
	}
	if limit < 1 {
		return database.Page{}, &services.ValidationError{Field: "limit", Message: "must be positive"}
	}
	return database.Page{Skip: skip, Limit: limit}, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &services.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &services.ValidationError{Field: name, Message: "must be a number"}
	}
	return &f, nil
}

func queryBool(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &services.ValidationError{Field: name, Message: "must be true or false"}
	}
	return &b, nil
}

// queryEnum parses an optional enumeration filter; absent means the zero value.
func queryEnum[T ~string](c *gin.Context, name string, parse func(string) (T, error)) (T, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		var zero T
		return zero, nil
	}
	return parse(raw)
}

// parseTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, &services.ValidationError{Field: field, Message: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"}
}
