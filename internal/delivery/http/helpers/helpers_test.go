package helpers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membershipevents/internal/domain"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: 1, PageSize: 20}},
		{"page=3&page_size=5", domain.PaginationParams{Page: 3, PageSize: 5}},
		{"page=0&page_size=-1", domain.PaginationParams{Page: 1, PageSize: 20}},
		{"page=x&page_size=1000", domain.PaginationParams{Page: 1, PageSize: MaxPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(r))
		})
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, meta := Page(items, domain.PaginationParams{Page: 2, PageSize: 2})
	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, meta)

	got, _ = Page(items, domain.PaginationParams{Page: 9, PageSize: 2})
	require.NotNil(t, got)
	assert.Empty(t, got)

	got, meta = Page(items, domain.PaginationParams{Page: 3, PageSize: 2})
	assert.Equal(t, []int{5}, got)
	assert.Equal(t, 3, meta.TotalPages)
}

func TestPage_HugePageNumber(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=9223372036854775807&page_size=20", nil)
	params := ParsePagination(r)

	var got []int
	require.NotPanics(t, func() {
		got, _ = Page([]int{1, 2, 3}, params)
	})
	require.NotNil(t, got)
	assert.Empty(t, got)

	got, _ = Page([]int{1, 2, 3}, domain.PaginationParams{Page: math.MaxInt, PageSize: math.MaxInt})
	assert.Empty(t, got)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (r noteRequest) Validate() []string {
	if r.Note == "" {
		return []string{"note is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ok     bool
		detail string
	}{
		{"valid", `{"note":"hi"}`, true, ""},
		{"unknown field", `{"note":"hi","extra":1}`, false, "unknown field"},
		{"validation", `{"note":""}`, false, "note is required"},
		{"malformed", `{`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			var dest noteRequest

			ok := DecodeAndValidate(rr, r, &dest)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				return
			}
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var resp APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeBadRequest, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.detail)
		})
	}
}
