package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantStatus int
	}{
		{name: "valid", body: `{"label":"Drafts"}`},
		{name: "malformed", body: `{"label":`, wantErr: true, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"label":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantErr: true, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var dest struct {
				Label string `json:"label"`
			}
			err := ParseJSON(rec, req, &dest)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ParseJSON: %v", err)
				}
				if dest.Label != "Drafts" {
					t.Errorf("label = %q", dest.Label)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			RespondParseError(rec, err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRespondErrorProblemDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "project already published", map[string]interface{}{"project_id": "p1"})

	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != float64(http.StatusConflict) || body["project_id"] != "p1" || body["title"] != "Conflict" {
		t.Errorf("body = %v", body)
	}
}

func TestDecodeProblem(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantTitle  string
		wantDetail string
	}{
		{name: "problem document", status: 404, body: `{"title":"Not Found","status":404,"detail":"project not found"}`, wantTitle: "Not Found", wantDetail: "project not found"},
		{name: "plain text", status: 502, body: "upstream down\n", wantTitle: "Bad Gateway", wantDetail: "upstream down"},
		{name: "empty", status: 500, wantTitle: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
			p := DecodeProblem(resp)
			if p.Status != tt.status || p.Title != tt.wantTitle || p.Detail != tt.wantDetail {
				t.Errorf("problem = %+v", p)
			}
		})
	}
}

func TestDecodeProblemExtras(t *testing.T) {
	body := `{"type":"about:blank","title":"Conflict","status":409,"detail":"project already published","reason":"published"}`
	resp := &http.Response{StatusCode: 409, Body: io.NopCloser(strings.NewReader(body))}

	p := DecodeProblem(resp)
	if p.Extra["reason"] != "published" {
		t.Errorf("extra = %v", p.Extra)
	}
	if _, ok := p.Extra["status"]; ok {
		t.Error("standard member leaked into extras")
	}
}

func TestPatch(t *testing.T) {
	var req struct {
		Description Patch[string]   `json:"description"`
		Genres      Patch[[]string] `json:"genres"`
	}

	tests := []struct {
		name      string
		body      string
		wantDesc  *string
		wantGenre int // -1 for absent
	}{
		{name: "absent", body: `{}`, wantDesc: nil, wantGenre: -1},
		{name: "null clears", body: `{"description":null,"genres":null}`, wantDesc: ptr(""), wantGenre: 0},
		{name: "values", body: `{"description":"a tale","genres":["fantasy","drama"]}`, wantDesc: ptr("a tale"), wantGenre: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Description, req.Genres = Patch[string]{}, Patch[[]string]{}
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatal(err)
			}

			got := req.Description.OrClear("")
			switch {
			case tt.wantDesc == nil && got != nil:
				t.Errorf("description = %q, want untouched", *got)
			case tt.wantDesc != nil && (got == nil || *got != *tt.wantDesc):
				t.Errorf("description = %v, want %q", got, *tt.wantDesc)
			}

			genres := req.Genres.OrClear(nil)
			if tt.wantGenre < 0 {
				if genres != nil {
					t.Errorf("genres = %v, want untouched", *genres)
				}
			} else if genres == nil || len(*genres) != tt.wantGenre {
				t.Errorf("genres = %v, want %d", genres, tt.wantGenre)
			}
		})
	}

	var bad Patch[string]
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Error("expected a type error")
	}
}

func ptr(s string) *string { return &s }
