// Package session owns the identity of the current pipeline run. A retake
// bumps the run token and clears local state; in-flight network calls are not
// cancelled on the wire, so their late results are instead rejected at the
// token gate here. That is the cancellation model for the whole core.
package session

import (
	"sync"

	"sosconnect-go/internal/types"
)

// Session holds the single active run: the captured media, the resolved
// location, and the assembled content. Single-writer — exactly one run
// mutates it, and capture/retake is the only mutator of run identity.
type Session struct {
	mu       sync.Mutex
	token    types.RunToken
	media    types.MediaAsset
	location *types.LocationInfo
	content  *types.GeneratedContent
	news     *types.NewsContent
}

func New() *Session {
	return &Session{}
}

// SetLocation stores the session's resolved location. Supplied once per
// session by the external resolver; read-only to the pipelines.
func (s *Session) SetLocation(loc types.LocationInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = &loc
}

// Location returns the resolved location, if one was supplied.
func (s *Session) Location() (types.LocationInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.location == nil {
		return types.LocationInfo{}, false
	}
	return *s.location, true
}

// Capture replaces the media asset wholesale, discards any previous run's
// results, and mints the token for the new run.
func (s *Session) Capture(media types.MediaAsset) types.RunToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.media = media
	s.content = nil
	s.news = nil
	return s.token
}

// Retake clears all run-held state and invalidates every outstanding token.
func (s *Session) Retake() types.RunToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.media = types.MediaAsset{}
	s.content = nil
	s.news = nil
	return s.token
}

// Token returns the active run token.
func (s *Session) Token() types.RunToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Media returns the current run's asset.
func (s *Session) Media() (types.MediaAsset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media, !s.media.Empty()
}

// apply runs fn under the lock only while tok is still the active run.
func (s *Session) apply(tok types.RunToken, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok != s.token {
		return &types.StaleResultError{Have: tok, Want: s.token}
	}
	fn()
	return nil
}

// SetContent applies an emergency run's result. A stale token leaves the
// session untouched and reports the (internal) stale-result error so the
// caller can log and drop it.
func (s *Session) SetContent(tok types.RunToken, content *types.GeneratedContent) error {
	return s.apply(tok, func() { s.content = content })
}

// SetNews applies a news run's result under the same token gate.
func (s *Session) SetNews(tok types.RunToken, news *types.NewsContent) error {
	return s.apply(tok, func() { s.news = news })
}

// Content returns the assembled emergency content, if the run completed.
func (s *Session) Content() *types.GeneratedContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// News returns the assembled news content, if the run completed.
func (s *Session) News() *types.NewsContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.news
}
