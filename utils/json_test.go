package utils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJSON(t *testing.T) {
	var payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"acme","count":3}`))
	err := ParseJSON(req, &payload)

	assert.NoError(t, err)
	assert.Equal(t, "acme", payload.Name)
	assert.Equal(t, 3, payload.Count)
}

func TestParseJSONMalformedBody(t *testing.T) {
	var payload map[string]interface{}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	assert.Error(t, ParseJSON(req, &payload))
}
