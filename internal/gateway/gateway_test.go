package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sosconnect-go/internal/types"
)

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1", ChatModel: "test-model"})
}

// TestDetectLanguageTrimsReply verifies the reply is usable even when the
// model quotes the language name.
func TestDetectLanguageTrimsReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "\"French\"\n"}},
			},
		})
	}))
	defer srv.Close()

	lang, err := newTestClient(srv).DetectLanguage(context.Background(),
		types.MediaAsset{Data: []byte("a"), Mime: "audio/mpeg", Kind: types.MediaAudio})
	if err != nil {
		t.Fatalf("DetectLanguage: %v", err)
	}
	if lang != "French" {
		t.Fatalf("lang = %q, want French", lang)
	}
}

// TestCompleteSurfacesUpstreamError verifies a non-success response becomes
// InferenceError with the upstream message attached, with no retry.
func TestCompleteSurfacesUpstreamError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"model overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateText(context.Background(), "hello")
	var inf *types.InferenceError
	if !errors.As(err, &inf) {
		t.Fatalf("error = %v, want InferenceError", err)
	}
	if !strings.Contains(inf.Msg, "model overloaded") {
		t.Fatalf("msg = %q, want upstream message", inf.Msg)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (gateway must not retry)", calls)
	}
}

// TestGenerateImageDataURI verifies the b64 payload is wrapped as a data URI
// and that an empty payload degrades to an empty string, not an error.
func TestGenerateImageDataURI(t *testing.T) {
	empty := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if empty {
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"b64_json": "aW1n"}},
		})
	}))
	defer srv.Close()

	cli := newTestClient(srv)
	uri, err := cli.GenerateImage(context.Background(), "bandage diagram")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if uri != "data:image/png;base64,aW1n" {
		t.Fatalf("uri = %q", uri)
	}

	empty = true
	uri, err = cli.GenerateImage(context.Background(), "bandage diagram")
	if err != nil || uri != "" {
		t.Fatalf("empty payload: uri=%q err=%v, want empty and nil", uri, err)
	}
}
