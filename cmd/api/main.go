package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"sosconnect-go/internal/dubbing"
	"sosconnect-go/internal/gateway"
	"sosconnect-go/internal/handoff"
	"sosconnect-go/internal/location"
	"sosconnect-go/internal/logger"
	"sosconnect-go/internal/pipeline"
	"sosconnect-go/internal/progress"
	"sosconnect-go/internal/session"
	"sosconnect-go/internal/types"
)

const maxUploadBytes = 64 << 20

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "sosconnect-go").Info("starting service")

	ai := gateway.New(gateway.Config{
		APIKey:     os.Getenv("LLM_API_KEY"),
		BaseURL:    os.Getenv("LLM_GATEWAY_URL"),
		ChatModel:  os.Getenv("LLM_MODEL"),
		ImageModel: os.Getenv("IMAGE_MODEL"),
	})

	bus := progress.NewBus(64)
	go func() {
		for ev := range bus.Events() {
			logger.New().WithField("phase", ev.Phase).Info("progress")
		}
	}()

	maxPolls := 120
	if v := os.Getenv("DUBBING_MAX_POLLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxPolls = n
		}
	}
	dubber := dubbing.NewOrchestrator(
		dubbing.NewClient(envOr("DUBBING_API_URL", "https://api.elevenlabs.io/v1"), os.Getenv("DUBBING_API_KEY")),
		dubbing.WithMaxPolls(maxPolls),
		dubbing.WithProgress(bus),
	)

	firstAid := pipeline.NewFirstAid(ai, bus)
	reportFlow := pipeline.NewReport(ai, firstAid, bus)
	newsFlow := pipeline.NewNews(ai, dubber, bus)
	sess := session.New()

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("POST /sos", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "sos")
		reqLog.Info("sos request received")

		media, err := readMedia(r)
		if err != nil {
			reqLog.WithError(err).Warn("bad upload")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		loc := location.Resolve(
			r.FormValue("city"),
			r.FormValue("country"),
			strings.ToUpper(r.FormValue("country_code")),
			r.FormValue("language"),
		)
		sess.SetLocation(loc)
		quick := r.FormValue("quick") == "true"
		token := sess.Capture(media)
		reqLog = reqLog.WithField("run_token", uint64(token)).WithField("quick", quick)

		start := time.Now()
		content, err := reportFlow.Run(r.Context(), media, loc, quick)
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("report pipeline finished")
		if err != nil {
			writeFailure(w, reqLog, err)
			return
		}
		if err := sess.SetContent(token, content); err != nil {
			// Retake happened mid-run; drop the result quietly.
			reqLog.WithError(err).Warn("stale result discarded")
			http.Error(w, "run superseded by retake", http.StatusConflict)
			return
		}

		exportWorkbook(reqLog, func(path string) error {
			return handoff.WriteReportWorkbook(path, content, loc)
		})

		writeJSON(w, reqLog, map[string]any{
			"content": content,
			"sms": map[string]string{
				"to":   handoff.EmergencyNumber,
				"body": handoff.EmergencySMS(*content.SosReport, content.FullTranslation),
			},
		})
	})

	mux.HandleFunc("POST /news", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "news")
		reqLog.Info("news request received")

		media, err := readMedia(r)
		if err != nil {
			reqLog.WithError(err).Warn("bad upload")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		loc := location.Resolve(
			r.FormValue("city"),
			r.FormValue("country"),
			strings.ToUpper(r.FormValue("country_code")),
			r.FormValue("language"),
		)
		sess.SetLocation(loc)
		token := sess.Capture(media)
		reqLog = reqLog.WithField("run_token", uint64(token))

		start := time.Now()
		news, err := newsFlow.Run(r.Context(), media)
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("news pipeline finished")
		if err != nil {
			writeFailure(w, reqLog, err)
			return
		}
		if err := sess.SetNews(token, news); err != nil {
			reqLog.WithError(err).Warn("stale result discarded")
			http.Error(w, "run superseded by retake", http.StatusConflict)
			return
		}

		exportWorkbook(reqLog, func(path string) error {
			return handoff.WriteNewsWorkbook(path, news, loc)
		})

		draft := handoff.NewsEmail(loc, *news, fileExt(media.Mime))
		writeJSON(w, reqLog, map[string]any{
			"summary":            news.Summary,
			"segments":           news.Segments,
			"dubbed_audio_bytes": len(news.DubbedAudio),
			"email":              map[string]any{"subject": draft.Subject, "body": draft.Body, "bcc": draft.Bcc},
		})
	})

	mux.HandleFunc("POST /retake", func(w http.ResponseWriter, r *http.Request) {
		token := sess.Retake()
		logger.New().WithRequest(r).WithField("run_token", uint64(token)).Info("session reset")
		w.WriteHeader(http.StatusNoContent)
	})

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 15 * time.Minute, // dubbing jobs are slow
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func readMedia(r *http.Request) (types.MediaAsset, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return types.MediaAsset{}, fmt.Errorf("parse upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return types.MediaAsset{}, fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return types.MediaAsset{}, err
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}
	kind := types.MediaVideo
	if strings.HasPrefix(mime, "audio/") {
		kind = types.MediaAudio
	}
	return types.MediaAsset{Data: data, Mime: mime, Kind: kind}, nil
}

// writeFailure maps the error taxonomy onto HTTP statuses. Nothing here is
// fatal; the user can always retake and retry.
func writeFailure(w http.ResponseWriter, log *logrus.Entry, err error) {
	log.WithField("error", err.Error()).Warn("pipeline failed")
	status := http.StatusBadGateway
	var missing *types.MissingInputError
	var timeout *types.TimeoutError
	switch {
	case errors.As(err, &missing):
		status = http.StatusBadRequest
	case errors.As(err, &timeout):
		status = http.StatusGatewayTimeout
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, log *logrus.Entry, payload any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func exportWorkbook(log *logrus.Entry, write func(path string) error) {
	dir := os.Getenv("EXPORT_DIR")
	if dir == "" {
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("dispatch_%d.xlsx", time.Now().Unix()))
	if err := write(path); err != nil {
		log.WithError(err).Warn("dispatch record export failed")
		return
	}
	log.WithField("path", path).Info("dispatch record exported")
}

func fileExt(mime string) string {
	if i := strings.IndexByte(mime, '/'); i >= 0 && i+1 < len(mime) {
		return mime[i+1:]
	}
	return "webm"
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
