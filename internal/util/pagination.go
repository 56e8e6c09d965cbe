package util

import (
	"strconv"
	"strings"
)

const (
	DefaultPageSize  = 10
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Calculate converts a 1-based page and page size into an offset and limit.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

// Window clamps skip/limit query values: negative skip becomes 0, a missing or
// non-positive limit becomes def, and limit never exceeds maxLimit.
func Window(skip, limit, def, maxLimit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = def
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

func ParseIntDefault(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// ParseUintPtr returns nil for an empty or invalid value.
func ParseUintPtr(raw string) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	v := uint(n)
	return &v
}
