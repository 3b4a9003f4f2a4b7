package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed frontend
var frontendFS embed.FS

const maxBodySize = 64 << 10 // 64 Ko

const (
	exerciseArrangement = "arrangement"
	exerciseMatching    = "matching"
)

// Server is the main HTTP server.
type Server struct {
	mux        *http.ServeMux
	store      *Store
	content    *ContentSource
	generator  ContentGenerator
	stats      AttemptRecorder
	sse        *Broadcaster
	logger     *zap.Logger
	actionRL   *rateLimiter
	generateRL *rateLimiter
}

// ServerDeps groups the collaborators of the HTTP server.
// Generator may be nil, which disables content generation.
type ServerDeps struct {
	Store     *Store
	Content   *ContentSource
	Generator ContentGenerator
	Stats     AttemptRecorder
	Logger    *zap.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(deps ServerDeps) *Server {
	if deps.Stats == nil {
		deps.Stats = NewMemoryRecorder()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Content == nil {
		deps.Content = NewContentSource(DefaultContent())
	}

	s := &Server{
		mux:        http.NewServeMux(),
		store:      deps.Store,
		content:    deps.Content,
		generator:  deps.Generator,
		stats:      deps.Stats,
		sse:        NewBroadcaster(),
		logger:     deps.Logger,
		actionRL:   newRateLimiter(60, time.Second), // 60 actions/sec per IP
		generateRL: newRateLimiter(5, time.Minute),  // 5 generations/min per IP
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Arrangement API
	s.mux.HandleFunc("POST /api/arrangements", s.handleCreateArrangement)
	s.mux.HandleFunc("GET /api/arrangements/{id}", s.handleGetArrangement)
	s.mux.HandleFunc("POST /api/arrangements/{id}/place", s.handlePlace)
	s.mux.HandleFunc("POST /api/arrangements/{id}/return", s.handleReturnToBank)
	s.mux.HandleFunc("POST /api/arrangements/{id}/verify", s.handleVerifyArrangement)
	s.mux.HandleFunc("POST /api/arrangements/{id}/clear", s.handleClear)
	s.mux.HandleFunc("POST /api/arrangements/{id}/next", s.handleNextWord)

	// Matching API
	s.mux.HandleFunc("POST /api/matchings", s.handleCreateMatching)
	s.mux.HandleFunc("GET /api/matchings/{id}", s.handleGetMatching)
	s.mux.HandleFunc("POST /api/matchings/{id}/left", s.handleSelectLeft)
	s.mux.HandleFunc("POST /api/matchings/{id}/right", s.handleSelectRight)
	s.mux.HandleFunc("POST /api/matchings/{id}/remove", s.handleRemoveConnection)
	s.mux.HandleFunc("POST /api/matchings/{id}/verify", s.handleVerifyMatching)
	s.mux.HandleFunc("POST /api/matchings/{id}/reset", s.handleResetMatching)
	s.mux.HandleFunc("POST /api/matchings/{id}/layout", s.handleLayout)

	// Shared
	s.mux.HandleFunc("GET /api/sessions/{id}/events", s.handleSessionEvents)
	s.mux.HandleFunc("GET /api/content", s.handleGetContent)
	s.mux.HandleFunc("POST /api/content/generate", s.handleGenerateContent)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)

	// Frontend static files
	frontendDir, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.FileServer(http.FS(frontendDir))
	s.mux.HandleFunc("GET /arrangement", s.pageHandler("frontend/arrangement.html"))
	s.mux.HandleFunc("GET /matching", s.pageHandler("frontend/matching.html"))
	s.mux.Handle("GET /", fileServer)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// Run drives the server's background maintenance until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.actionRL.run(ctx) })
	g.Go(func() error { return s.generateRL.run(ctx) })
	return g.Wait()
}

// --- Arrangement handlers ---

// POST /api/arrangements: start an arrangement session.
func (s *Server) handleCreateArrangement(w http.ResponseWriter, r *http.Request) {
	if !s.actionRL.allow(clientIP(r.RemoteAddr)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}
	sess := s.store.CreateArrangement(s.content.Get())
	s.logger.Debug("Session d'arrangement créée", zap.String("session", sess.ID))

	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, State: sess.View()})
}

// GET /api/arrangements/{id}: current view state.
func (s *Server) handleGetArrangement(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupArrangement(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// POST /api/arrangements/{id}/place: drop a letter onto a slot.
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payload string `json:"payload"`
		Slot    *int   `json:"slot"`
	}
	s.arrangementAction(w, r, &req, "place", func(a *Arrangement) bool {
		if req.Slot == nil {
			s.logger.Debug("Dépôt ignoré : emplacement absent")
			return false
		}
		p, err := ParsePayload(req.Payload)
		if err != nil {
			s.logger.Debug("Dépôt ignoré", zap.Error(err))
			return false
		}
		return a.Place(p, *req.Slot)
	})
}

// POST /api/arrangements/{id}/return: drop a letter back onto the bank.
func (s *Server) handleReturnToBank(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payload string `json:"payload"`
	}
	s.arrangementAction(w, r, &req, "return", func(a *Arrangement) bool {
		p, err := ParsePayload(req.Payload)
		if err != nil {
			s.logger.Debug("Dépôt ignoré", zap.Error(err))
			return false
		}
		return a.ReturnToBank(p)
	})
}

// POST /api/arrangements/{id}/verify: check the assembled word.
func (s *Server) handleVerifyArrangement(w http.ResponseWriter, r *http.Request) {
	var outcome Result
	sess := s.arrangementAction(w, r, nil, "verify", func(a *Arrangement) bool {
		outcome = a.Verify()
		return true
	})
	if sess != nil {
		s.recordAttempt(r.Context(), exerciseArrangement, sess.ID, outcome)
	}
}

// POST /api/arrangements/{id}/clear: send every placed letter back.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.arrangementAction(w, r, nil, "clear", func(a *Arrangement) bool {
		a.Clear()
		return true
	})
}

// POST /api/arrangements/{id}/next: move on to the next word.
func (s *Server) handleNextWord(w http.ResponseWriter, r *http.Request) {
	s.arrangementAction(w, r, nil, "next", func(a *Arrangement) bool {
		a.Next()
		return true
	})
}

// arrangementAction decodes the optional body into req, applies fn and
// answers with the new view state. Changes are broadcast to subscribers.
func (s *Server) arrangementAction(w http.ResponseWriter, r *http.Request, req any, event string, fn func(a *Arrangement) bool) *ArrangementSession {
	if !s.actionRL.allow(clientIP(r.RemoteAddr)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return nil
	}
	sess := s.lookupArrangement(w, r)
	if sess == nil {
		return nil
	}
	if req != nil && !decodeBody(w, r, req) {
		return nil
	}

	changed := false
	view := sess.Do(func(a *Arrangement) { changed = fn(a) })
	if changed {
		s.sse.Publish(sess.ID, Event{Type: event, State: view})
	}
	writeJSON(w, http.StatusOK, view)
	return sess
}

func (s *Server) lookupArrangement(w http.ResponseWriter, r *http.Request) *ArrangementSession {
	sess, err := s.store.GetArrangement(r.PathValue("id"))
	if err != nil {
		jsonError(w, "Session introuvable", http.StatusNotFound)
		return nil
	}
	return sess
}

// --- Matching handlers ---

// POST /api/matchings: start a matching session.
func (s *Server) handleCreateMatching(w http.ResponseWriter, r *http.Request) {
	if !s.actionRL.allow(clientIP(r.RemoteAddr)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}
	sess := s.store.CreateMatching(s.content.Get())
	s.logger.Debug("Session d'association créée", zap.String("session", sess.ID))

	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, State: sess.View()})
}

// GET /api/matchings/{id}: current view state, connector lines included.
func (s *Server) handleGetMatching(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupMatching(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

type indexRequest struct {
	Index *int `json:"index"`
}

// POST /api/matchings/{id}/left: toggle a left selection.
func (s *Server) handleSelectLeft(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	s.matchingAction(w, r, &req, "select_left", func(m *Matching) bool {
		return req.Index != nil && m.SelectLeft(*req.Index)
	})
}

// POST /api/matchings/{id}/right: connect the selected left item.
func (s *Server) handleSelectRight(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	s.matchingAction(w, r, &req, "connect", func(m *Matching) bool {
		return req.Index != nil && m.SelectRight(*req.Index)
	})
}

// POST /api/matchings/{id}/remove: delete one connection.
func (s *Server) handleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LeftIdx  *int `json:"leftIdx"`
		RightIdx *int `json:"rightIdx"`
	}
	s.matchingAction(w, r, &req, "remove", func(m *Matching) bool {
		if req.LeftIdx == nil || req.RightIdx == nil {
			return false
		}
		return m.Remove(Connection{LeftIdx: *req.LeftIdx, RightIdx: *req.RightIdx})
	})
}

// POST /api/matchings/{id}/verify: check every connection.
func (s *Server) handleVerifyMatching(w http.ResponseWriter, r *http.Request) {
	var outcome Result
	sess := s.matchingAction(w, r, nil, "verify", func(m *Matching) bool {
		outcome = m.Verify()
		return true
	})
	if sess != nil {
		s.recordAttempt(r.Context(), exerciseMatching, sess.ID, outcome)
	}
}

// POST /api/matchings/{id}/reset: drop every connection.
func (s *Server) handleResetMatching(w http.ResponseWriter, r *http.Request) {
	s.matchingAction(w, r, nil, "reset", func(m *Matching) bool {
		m.Reset()
		return true
	})
}

// POST /api/matchings/{id}/layout: new element geometry from the browser.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req Layout
	s.matchingAction(w, r, &req, "layout", func(m *Matching) bool {
		m.SetLayout(req)
		return true
	})
}

func (s *Server) matchingAction(w http.ResponseWriter, r *http.Request, req any, event string, fn func(m *Matching) bool) *MatchingSession {
	if !s.actionRL.allow(clientIP(r.RemoteAddr)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return nil
	}
	sess := s.lookupMatching(w, r)
	if sess == nil {
		return nil
	}
	if req != nil && !decodeBody(w, r, req) {
		return nil
	}

	changed := false
	view := sess.Do(func(m *Matching) { changed = fn(m) })
	if changed {
		s.sse.Publish(sess.ID, Event{Type: event, State: view})
	}
	writeJSON(w, http.StatusOK, view)
	return sess
}

func (s *Server) lookupMatching(w http.ResponseWriter, r *http.Request) *MatchingSession {
	sess, err := s.store.GetMatching(r.PathValue("id"))
	if err != nil {
		jsonError(w, "Session introuvable", http.StatusNotFound)
		return nil
	}
	return sess
}

// --- Shared handlers ---

// GET /api/sessions/{id}/events: SSE stream of view states.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var initial Event
	if sess, err := s.store.GetArrangement(id); err == nil {
		initial = Event{Type: "state", State: sess.View()}
	} else if sess, err := s.store.GetMatching(id); err == nil {
		initial = Event{Type: "state", State: sess.View()}
	} else {
		jsonError(w, "Session introuvable", http.StatusNotFound)
		return
	}

	s.logger.Debug("Abonnement SSE",
		zap.String("session", id),
		zap.Int("subscribers", s.sse.SubscriberCount(id)+1))
	s.sse.ServeSSE(w, r, id, &initial)
}

// GET /api/content: sample content new sessions are built from.
func (s *Server) handleGetContent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Get())
}

// POST /api/content/generate: replace the sample content with a Gemini set.
func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	if !s.generateRL.allow(clientIP(r.RemoteAddr)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}
	if s.generator == nil {
		jsonError(w, "Génération de contenu non configurée", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Theme string `json:"theme"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	c, err := s.generator.GenerateContent(r.Context(), req.Theme)
	if err != nil {
		s.logger.Error("Erreur de génération de contenu", zap.Error(err))
		jsonError(w, "Erreur lors de la génération du contenu", http.StatusInternalServerError)
		return
	}

	s.content.Set(c)
	s.logger.Info("Contenu généré installé",
		zap.String("theme", req.Theme),
		zap.Int("words", len(c.Words)),
		zap.Int("pairs", len(c.Pairs)))

	writeJSON(w, http.StatusCreated, c)
}

// GET /api/stats: verify outcomes per exercise.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		s.logger.Error("Erreur de lecture des statistiques", zap.Error(err))
		jsonError(w, "Statistiques indisponibles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) recordAttempt(ctx context.Context, exercise, sessionID string, outcome Result) {
	err := s.stats.Record(ctx, Attempt{
		Exercise:  exercise,
		SessionID: sessionID,
		Outcome:   outcome,
		At:        time.Now(),
	})
	if err != nil {
		s.logger.Warn("Tentative non enregistrée", zap.String("exercise", exercise), zap.Error(err))
	}
}

// --- Frontend page handlers ---

func (s *Server) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := frontendFS.ReadFile(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}
}

// --- Helpers ---

type sessionResponse struct {
	ID    string `json:"id"`
	State any    `json:"state"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "Requête trop volumineuse", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
