package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/transport/http/middleware"
)

// ============================================================================
// parsePage
// ============================================================================

func TestParsePage(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantPage model.Page
		wantErr  error
	}{
		{"defaults", "", model.Page{Number: 1, Size: 10}, nil},
		{"explicit", "?page=3&page_size=25", model.Page{Number: 3, Size: 25}, nil},
		{"size capped", "?page_size=1000", model.Page{Number: 1, Size: model.MaxPageSize}, nil},
		{"bad size falls back", "?page_size=abc", model.Page{Number: 1, Size: 10}, nil},
		{"zero size falls back", "?page_size=0", model.Page{Number: 1, Size: 10}, nil},
		{"non-numeric page", "?page=last", model.Page{}, model.ErrInvalidPage},
		{"zero page", "?page=0", model.Page{}, model.ErrInvalidPage},
		{"page past offset range", "?page=9223372036854775807", model.Page{}, model.ErrInvalidPage},
		{"page overflows int", "?page=99999999999999999999", model.Page{}, model.ErrInvalidPage},
		{"largest page", fmt.Sprintf("?page=%d", model.MaxPageNumber), model.Page{Number: model.MaxPageNumber, Size: 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/posts"+tt.query, nil)

			page, err := parsePage(r)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && page != tt.wantPage {
				t.Errorf("expected %+v, got %+v", tt.wantPage, page)
			}
		})
	}
}

// ============================================================================
// writePage
// ============================================================================

type envelope struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []int   `json:"results"`
}

func TestWritePage_Links(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		page         model.Page
		count        int
		wantNext     string
		wantPrevious string
	}{
		{
			name:     "first page",
			target:   "/posts?page_size=2",
			page:     model.Page{Number: 1, Size: 2},
			count:    5,
			wantNext: "http://example.com/posts?page=2&page_size=2",
		},
		{
			name:         "middle page drops page param for page 1",
			target:       "/posts?page=2&page_size=2",
			page:         model.Page{Number: 2, Size: 2},
			count:        5,
			wantNext:     "http://example.com/posts?page=3&page_size=2",
			wantPrevious: "http://example.com/posts?page_size=2",
		},
		{
			name:         "last page",
			target:       "/posts?page=3&page_size=2",
			page:         model.Page{Number: 3, Size: 2},
			count:        5,
			wantPrevious: "http://example.com/posts?page=2&page_size=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			// ACT
			writePage(w, r, tt.page, tt.count, []int{1})

			// ASSERT
			var body envelope
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Count != tt.count {
				t.Errorf("expected count %d, got %d", tt.count, body.Count)
			}
			if got := deref(body.Next); got != tt.wantNext {
				t.Errorf("next: expected %q, got %q", tt.wantNext, got)
			}
			if got := deref(body.Previous); got != tt.wantPrevious {
				t.Errorf("previous: expected %q, got %q", tt.wantPrevious, got)
			}
		})
	}
}

func TestWritePage_EmptyResultsIsArray(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/posts", nil)
	w := httptest.NewRecorder()

	writePage[int](w, r, model.DefaultPage(), 0, nil)

	want := `{"count":0,"next":null,"previous":null,"results":[]}` + "\n"
	if w.Body.String() != want {
		t.Errorf("expected %s, got %s", want, w.Body.String())
	}
}

func TestPageURL_ForwardedProto(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/posts", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	got := *pageURL(r, 2)

	if got != "https://example.com/posts?page=2" {
		t.Errorf("unexpected url %s", got)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ============================================================================
// writeServiceError
// ============================================================================

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", model.NewValidationError("content", "This field is required."), http.StatusBadRequest, "BAD_REQUEST"},
		{"invalid page", model.ErrInvalidPage, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("load: %w", model.ErrPostNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", model.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not sender", model.ErrNotMessageSender, http.StatusForbidden, "FORBIDDEN"},
		{"not receiver", model.ErrNotMessageReceiver, http.StatusForbidden, "FORBIDDEN"},
		{"self follow", model.ErrCannotFollowSelf, http.StatusBadRequest, "BAD_REQUEST"},
		{"profile exists", model.ErrProfileExists, http.StatusBadRequest, "BAD_REQUEST"},
		{"file too large", model.ErrFileTooLarge, http.StatusBadRequest, model.CodeFileTooLarge},
		{"bad image", model.ErrInvalidImageType, http.StatusBadRequest, model.CodeInvalidImageType},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			writeServiceError(w, logger.Nop(), tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body struct {
				Error struct {
					Code    string              `json:"code"`
					Message string              `json:"message"`
					Fields  map[string][]string `json:"fields"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Error.Code)
			}
		})
	}
}

func TestWriteServiceError_ValidationFields(t *testing.T) {
	w := httptest.NewRecorder()

	writeServiceError(w, logger.Nop(), model.NewValidationError("bio", "Too long."))

	var body struct {
		Error struct {
			Fields map[string][]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body.Error.Fields["bio"]; len(got) != 1 || got[0] != "Too long." {
		t.Errorf("unexpected fields %v", body.Error.Fields)
	}
}

func TestWriteRawError_CarriesErrorText(t *testing.T) {
	w := httptest.NewRecorder()

	writeRawError(w, logger.Nop(), errors.New("pq: relation does not exist"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "pq: relation does not exist" {
		t.Errorf("unexpected message %q", body.Error.Message)
	}
}

// ============================================================================
// Request helpers
// ============================================================================

func TestURLID(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
		wantID int64
	}{
		{"42", true, 42},
		{"abc", false, 0},
		{"0", false, 0},
		{"-3", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			id, ok := urlID(w, r, "id")

			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.wantID, tt.wantOK, id, ok)
			}
			if !ok && w.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", w.Code)
			}
		})
	}
}

func TestViewerID(t *testing.T) {
	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	if viewerID(anon) != nil {
		t.Error("expected nil viewer for anonymous request")
	}

	authed := anon.WithContext(context.WithValue(anon.Context(), middleware.UserIDKey, int64(7)))
	if v := viewerID(authed); v == nil || *v != 7 {
		t.Errorf("expected viewer 7, got %v", v)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.2.3.4:5", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "1.2.3.4:5", "10.0.0.9"},
		{"remote addr", nil, "1.2.3.4:5678", "1.2.3.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			if got := clientIP(r); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
