package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/atlasprompt/internal/model"
)

func sampleMarkers() []model.MarkerSpec {
	return []model.MarkerSpec{
		{Index: 0, Color: "0xE6194B", Coordinate: model.Coordinate{Latitude: 51.5, Longitude: -0.12}, LabelKind: model.LabelNumeric, LabelText: "1"},
		{Index: 0, Color: "0xE6194B", Coordinate: model.Coordinate{Latitude: 51.5, Longitude: 0.08}, LabelKind: model.LabelName, LabelText: "london"},
	}
}

func sampleDirectives() []model.StyleDirective {
	return []model.StyleDirective{
		{Element: "labels", Rules: []model.StyleRule{{Property: "visibility", Value: "off"}}},
		{Feature: "water", Element: "geometry", Rules: []model.StyleRule{{Property: "color", Value: "0xcceeff"}}},
	}
}

func TestBuilder_Order(t *testing.T) {
	b := NewBuilder(800, 600, "secret")
	req := b.Build(sampleMarkers(), sampleDirectives())

	names := make([]string, 0, len(req.Params))
	for _, p := range req.Params {
		names = append(names, p.Name)
	}
	want := "size,markers,markers,style,style,key"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("Expected parameter order %s, got %s", want, got)
	}

	if req.Params[0].Value != "800x600" {
		t.Errorf("Expected size 800x600, got %s", req.Params[0].Value)
	}
	if got := req.Values("markers"); got[0] != "color:0xE6194B|label:1|51.5,-0.12" {
		t.Errorf("Unexpected numeric marker value: %s", got[0])
	}
	if got := req.Values("markers"); got[1] != "size:small|color:0xE6194B|label:L|51.5,0.08" {
		t.Errorf("Unexpected name marker value: %s", got[1])
	}
	if got := req.Values("style"); got[0] != "element:labels|visibility:off" || got[1] != "feature:water|element:geometry|color:0xcceeff" {
		t.Errorf("Unexpected style values: %v", got)
	}
}

func TestBuilder_MultiDigitLabelDropped(t *testing.T) {
	b := NewBuilder(640, 480, "")
	req := b.Build([]model.MarkerSpec{
		{Index: 11, Color: "0x111111", Coordinate: model.Coordinate{Latitude: 1, Longitude: 2}, LabelKind: model.LabelNumeric, LabelText: "12"},
	}, nil)

	if got := req.Values("markers")[0]; got != "color:0x111111|1,2" {
		t.Errorf("Expected label to be dropped for multi-character text, got %s", got)
	}
	if len(req.Values("key")) != 0 {
		t.Error("Expected no key parameter when the key is empty")
	}
}

func TestBuilder_Empty(t *testing.T) {
	req := NewBuilder(800, 600, "k").Build(nil, nil)
	if len(req.Params) != 2 {
		t.Errorf("Expected only size and key, got %+v", req.Params)
	}
}

func TestRequest_EncodeAndRedact(t *testing.T) {
	req := NewBuilder(800, 600, "secret").Build(sampleMarkers(), sampleDirectives())

	encoded := req.Encode()
	if !strings.HasPrefix(encoded, "size=800x600&markers=") {
		t.Errorf("Unexpected encoding prefix: %s", encoded)
	}
	if !strings.Contains(encoded, "%7C") {
		t.Errorf("Expected pipe separators to be escaped: %s", encoded)
	}

	values, err := url.ParseQuery(encoded)
	if err != nil {
		t.Fatalf("encoded query does not parse: %v", err)
	}
	if len(values["markers"]) != 2 || len(values["style"]) != 2 {
		t.Errorf("Expected repeated parameters to survive encoding, got %v", values)
	}

	redacted := req.Redacted()
	if got := redacted.Values("key"); len(got) != 1 || got[0] != "REDACTED" {
		t.Errorf("Expected redacted key, got %v", got)
	}
	if req.Values("key")[0] != "secret" {
		t.Error("Redacted must not modify the original request")
	}
}

func TestClient_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query()["markers"]; len(got) != 2 {
			t.Errorf("Expected 2 markers, got %v", got)
		}
		if got := r.URL.Query().Get("key"); got != "secret" {
			t.Errorf("Expected key secret, got %s", got)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake"))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL, Timeout: 5 * time.Second})
	req := NewBuilder(800, 600, "secret").Build(sampleMarkers(), sampleDirectives())

	img, err := client.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(img.Data) != "\x89PNG fake" {
		t.Errorf("Unexpected body: %q", img.Data)
	}
	if img.ContentType != "image/png" {
		t.Errorf("Unexpected content type: %s", img.ContentType)
	}
}

func TestClient_Fetch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("The provided API key is invalid."))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL, Timeout: 5 * time.Second})
	_, err := client.Fetch(context.Background(), NewBuilder(800, 600, "bad").Build(nil, nil))

	var upstreamErr *model.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if upstreamErr.Status != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", upstreamErr.Status)
	}
	if upstreamErr.Details != "The provided API key is invalid." {
		t.Errorf("Unexpected details: %s", upstreamErr.Details)
	}
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(ClientOptions{BaseURL: baseURL, Timeout: time.Second})
	_, err := client.Fetch(context.Background(), NewBuilder(800, 600, "topsecret").Build(nil, nil))

	var upstreamErr *model.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if strings.Contains(err.Error(), "topsecret") {
		t.Errorf("Expected key to be stripped from error: %v", err)
	}
}
