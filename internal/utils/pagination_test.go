package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 1, 10, 1, 10, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"page below minimum", 0, 10, 1, 10, 0},
		{"negative page", -3, 10, 1, 10, 0},
		{"limit zero falls back", 1, 0, 1, 10, 0},
		{"limit above maximum falls back", 1, 500, 1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := NewPaginationParams(tt.page, tt.limit, 10)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset)
		})
	}
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&limit=5", nil)

	params := GetPaginationParams(c, 20)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, 10, params.Offset)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)

	params = GetPaginationParams(c, 20)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(PaginationParams{Page: 2, Limit: 10}, 25)
	assert.Equal(t, int64(25), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, 3, resp.Pages)

	resp = NewPaginationResponse(PaginationParams{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, resp.Pages)
}
