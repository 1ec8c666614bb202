// Package eyestest provides an in-process fake of the Eyes REST API.
package eyestest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/acmebank/visualtests/internal/eyes"
)

// Match is one checkpoint received by the fake server
type Match struct {
	Tag        string
	MatchLevel eyes.MatchLevel
	Fully      bool
	Title      string
	Screenshot []byte
}

// Session is one running session as seen by the fake server
type Session struct {
	ID        string
	StartInfo eyes.SessionStartInfo
	Matches   []Match
	Stopped   bool
	Aborted   bool
}

// Server answers the Eyes session endpoints and records every call.
// Checkpoints whose tag is listed in Mismatch are reported as differences.
type Server struct {
	*httptest.Server

	APIKey string

	mu       sync.Mutex
	sessions []*Session
	mismatch map[string]bool
	baseline map[string]bool
	failStop bool
}

// NewServer starts a fake server accepting apiKey
func NewServer(apiKey string) *Server {
	s := &Server{
		APIKey:   apiKey,
		mismatch: make(map[string]bool),
		baseline: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions/running", s.authorized(s.startSession))
	mux.HandleFunc("POST /api/sessions/running/{id}", s.authorized(s.matchWindow))
	mux.HandleFunc("DELETE /api/sessions/running/{id}", s.authorized(s.stopSession))
	s.Server = httptest.NewServer(mux)
	return s
}

// Mismatch makes checkpoints tagged tag differ from their baseline
func (s *Server) Mismatch(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mismatch[tag] = true
}

// Baseline marks testName as already having a baseline
func (s *Server) Baseline(testName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseline[testName] = true
}

// FailStop makes every stop request fail with 500
func (s *Server) FailStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStop = true
}

// Sessions returns copies of the recorded sessions in start order
func (s *Server) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		c := *session
		c.Matches = append([]Match(nil), session.Matches...)
		out = append(out, c)
	}
	return out
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(eyes.APIKeyHeader) != s.APIKey {
			http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var info eyes.SessionStartInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	session := &Session{ID: fmt.Sprintf("session-%d", len(s.sessions)+1), StartInfo: info}
	s.sessions = append(s.sessions, session)
	isNew := !s.baseline[info.ScenarioIDOrName]
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, eyes.RunningSession{
		ID:        session.ID,
		SessionID: session.ID,
		BatchID:   info.BatchInfo.ID,
		URL:       s.URL + "/app/sessions/" + session.ID,
		IsNew:     isNew,
	})
}

func (s *Server) matchWindow(w http.ResponseWriter, r *http.Request) {
	var data eyes.MatchWindowData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.find(r.PathValue("id"))
	if session == nil || session.Stopped {
		http.Error(w, `{"message":"session not found"}`, http.StatusNotFound)
		return
	}
	session.Matches = append(session.Matches, Match{
		Tag:        data.Tag,
		MatchLevel: data.Options.MatchLevel,
		Fully:      data.Options.Fully,
		Title:      data.AppOutput.Title,
		Screenshot: data.AppOutput.Screenshot64,
	})

	writeJSON(w, http.StatusOK, eyes.MatchResult{
		AsExpected: !s.mismatch[data.Tag],
		WindowID:   fmt.Sprintf("%s-%d", session.ID, len(session.Matches)),
	})
}

func (s *Server) stopSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failStop {
		http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
		return
	}
	session := s.find(r.PathValue("id"))
	if session == nil || session.Stopped {
		http.Error(w, `{"message":"session not found"}`, http.StatusNotFound)
		return
	}
	session.Stopped = true
	session.Aborted = r.URL.Query().Get("aborted") == "true"

	results := eyes.TestResults{
		ID:        session.ID,
		Name:      session.StartInfo.ScenarioIDOrName,
		AppName:   session.StartInfo.AppIDOrName,
		BatchID:   session.StartInfo.BatchInfo.ID,
		Status:    eyes.StatusPassed,
		IsNew:     !s.baseline[session.StartInfo.ScenarioIDOrName],
		IsAborted: session.Aborted,
		Steps:     len(session.Matches),
		URL:       s.URL + "/app/sessions/" + session.ID,
	}
	for _, m := range session.Matches {
		if s.mismatch[m.Tag] {
			results.Mismatches++
		} else {
			results.Matches++
		}
	}
	switch {
	case session.Aborted:
		results.Status = eyes.StatusFailed
	case results.Mismatches > 0:
		results.Status = eyes.StatusUnresolved
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) find(id string) *Session {
	for _, session := range s.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
