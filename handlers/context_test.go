package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/clients", nil)
	limit, skip := parsePagination(r)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, skip)
}

func TestParsePaginationExplicit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/clients?limit=20&skip=40", nil)
	limit, skip := parsePagination(r)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 40, skip)
}

func TestParsePaginationCapsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/clients?limit=500", nil)
	limit, _ := parsePagination(r)
	assert.Equal(t, 50, limit, "out-of-range limit falls back to the default")

	r = httptest.NewRequest("GET", "/api/clients?limit=0", nil)
	limit, _ = parsePagination(r)
	assert.Equal(t, 50, limit)
}

func TestParsePaginationPageParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/clients?limit=25&page=3", nil)
	limit, skip := parsePagination(r)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 50, skip)

	// Explicit skip wins over page
	r = httptest.NewRequest("GET", "/api/clients?skip=10&page=3", nil)
	_, skip = parsePagination(r)
	assert.Equal(t, 10, skip)
}
