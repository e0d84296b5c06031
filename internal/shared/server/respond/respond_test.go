package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/shared/requestid"
)

func TestPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query         string
		limit, offset int
	}{
		{query: "", limit: DefaultLimit, offset: 0},
		{query: "?limit=5&offset=10", limit: 5, offset: 10},
		{query: "?limit=-1&offset=-3", limit: DefaultLimit, offset: 0},
		{query: "?limit=1000", limit: MaxLimit, offset: 0},
		{query: "?limit=abc", limit: DefaultLimit, offset: 0},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
		limit, offset := Page(c)
		if limit != tt.limit || offset != tt.offset {
			t.Fatalf("Page(%q) = %d,%d want %d,%d", tt.query, limit, offset, tt.limit, tt.offset)
		}
	}
}

func TestErrorShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Request = req.WithContext(requestid.With(req.Context(), "req-7"))
	Error(c, http.StatusBadRequest, CodeValidation, "bad input", map[string]string{"field": "name"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != CodeValidation || body.Error.Message != "bad input" || body.Error.RequestID != "req-7" {
		t.Fatalf("unexpected body %+v", body)
	}
	if details, _ := body.Error.Details.(map[string]any); details["field"] != "name" {
		t.Fatalf("details not carried: %+v", body.Error.Details)
	}
	if !c.IsAborted() {
		t.Fatalf("expected request to be aborted")
	}
}

func TestAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Accepted(c, gin.H{"id": "a-1"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
}
