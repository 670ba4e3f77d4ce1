package dubbing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sosconnect-go/internal/progress"
	"sosconnect-go/internal/types"
)

// fakeDubbingAPI scripts the status sequence a job walks through.
type fakeDubbingAPI struct {
	mu          sync.Mutex
	statuses    []statusResponse
	statusCalls int
	fetchCalls  int
	audio       []byte
	submitForm  map[string]string
}

func (f *fakeDubbingAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /dubbing", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		f.mu.Lock()
		f.submitForm = map[string]string{
			"mode":        r.FormValue("mode"),
			"target_lang": r.FormValue("target_lang"),
			"name":        r.FormValue("name"),
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"dubbing_id": "job-1"})
	})

	mux.HandleFunc("GET /dubbing/job-1", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		idx := f.statusCalls
		if idx >= len(f.statuses) {
			idx = len(f.statuses) - 1
		}
		resp := f.statuses[idx]
		f.statusCalls++
		f.mu.Unlock()
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("GET /dubbing/job-1/audio/en", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.fetchCalls++
		f.mu.Unlock()
		if got := r.Header.Get("Accept"); got != "audio/mpeg" {
			t.Errorf("Accept = %q, want audio/mpeg", got)
		}
		w.Write(f.audio)
	})

	return mux
}

func clip() types.MediaAsset {
	return types.MediaAsset{Data: []byte("frames"), Mime: "video/webm", Kind: types.MediaVideo}
}

// TestOrchestratorHappyPath walks queued -> processing -> dubbed and checks
// the orchestrator fetches the audio only after the job reports dubbed.
func TestOrchestratorHappyPath(t *testing.T) {
	api := &fakeDubbingAPI{
		statuses: []statusResponse{
			{Status: StatusQueued},
			{Status: StatusProcessing},
			{Status: StatusDubbed},
		},
		audio: []byte("mp3-bytes"),
	}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	bus := progress.NewBus(16)
	o := NewOrchestrator(NewClient(srv.URL, "test-key"),
		WithPollInterval(time.Millisecond),
		WithProgress(bus),
	)

	audio, err := o.Run(context.Background(), clip(), "en")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("audio = %q, want mp3-bytes", audio)
	}
	if api.statusCalls != 3 {
		t.Fatalf("status calls = %d, want 3 (queued, processing, dubbed)", api.statusCalls)
	}
	if api.fetchCalls != 1 {
		t.Fatalf("fetch calls = %d, want 1", api.fetchCalls)
	}
	if api.submitForm["mode"] != "automatic" || api.submitForm["target_lang"] != "en" {
		t.Fatalf("submit form = %v", api.submitForm)
	}
	if !strings.HasPrefix(api.submitForm["name"], "SOSConnect_Dub_") {
		t.Fatalf("job name = %q", api.submitForm["name"])
	}

	bus.Close()
	var phases []string
	for ev := range bus.Events() {
		phases = append(phases, ev.Phase)
	}
	want := []string{
		"Uploading clip for automatic dubbing...",
		"Polling for dubbing completion...",
		"Dubbing status: Queued...",
		"Dubbing status: Processing...",
		"Downloading final dubbed audio...",
	}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phase[%d] = %q, want %q", i, phases[i], want[i])
		}
	}
}

// TestOrchestratorJobFailure verifies a terminal non-success status raises
// JobFailedError with the reported reason and never calls fetch.
func TestOrchestratorJobFailure(t *testing.T) {
	api := &fakeDubbingAPI{
		statuses: []statusResponse{
			{Status: StatusQueued},
			{Status: "failed", Error: "source audio unusable"},
		},
	}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	o := NewOrchestrator(NewClient(srv.URL, "test-key"), WithPollInterval(time.Millisecond))

	_, err := o.Run(context.Background(), clip(), "en")
	var failed *types.JobFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Run error = %v, want JobFailedError", err)
	}
	if failed.Status != "failed" || failed.Reason != "source audio unusable" {
		t.Fatalf("failure = %+v", failed)
	}
	if api.fetchCalls != 0 {
		t.Fatalf("fetch calls = %d, want 0", api.fetchCalls)
	}
}

// TestOrchestratorPollCeiling verifies the attempt ceiling converts an
// endless in-progress job into TimeoutError.
func TestOrchestratorPollCeiling(t *testing.T) {
	api := &fakeDubbingAPI{
		statuses: []statusResponse{{Status: StatusRendering}},
	}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	o := NewOrchestrator(NewClient(srv.URL, "test-key"),
		WithPollInterval(time.Millisecond),
		WithMaxPolls(4),
	)

	_, err := o.Run(context.Background(), clip(), "en")
	var timeout *types.TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("Run error = %v, want TimeoutError", err)
	}
	if timeout.Attempts != 4 {
		t.Fatalf("attempts = %d, want 4", timeout.Attempts)
	}
	if api.statusCalls != 4 {
		t.Fatalf("status calls = %d, want 4", api.statusCalls)
	}
}

// TestSubmitSurfacesErrorBody verifies a non-success submit response becomes
// SubmissionError carrying the upstream body.
func TestSubmitSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid target_lang"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	o := NewOrchestrator(NewClient(srv.URL, "test-key"))
	_, err := o.Run(context.Background(), clip(), "xx")
	var sub *types.SubmissionError
	if !errors.As(err, &sub) {
		t.Fatalf("Run error = %v, want SubmissionError", err)
	}
	if !strings.Contains(sub.Body, "invalid target_lang") {
		t.Fatalf("body = %q, want upstream detail", sub.Body)
	}
}

// TestOrchestratorRequiresMedia verifies the fail-fast path makes no network
// call when media is absent.
func TestOrchestratorRequiresMedia(t *testing.T) {
	o := NewOrchestrator(NewClient("http://127.0.0.1:0", "test-key"))
	_, err := o.Run(context.Background(), types.MediaAsset{}, "en")
	var missing *types.MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Run error = %v, want MissingInputError", err)
	}
}
