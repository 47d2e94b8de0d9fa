/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions decode JSON requests, validate them, run the player's
    session operation (internal/session), and return JSON responses.

    Key Responsibilities:
    - Authentication (Bearer token or ?token= for the WebSocket)
    - Input Validation (Is the JSON valid? Is the value in range?)
    - Mapping game results to status codes
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/everforgeworks/habit-galaxy/internal/auth"
	"github.com/everforgeworks/habit-galaxy/internal/game"
	"github.com/everforgeworks/habit-galaxy/internal/session"
	"github.com/everforgeworks/habit-galaxy/internal/storage"
)

// Request DTOs (Data Transfer Objects)
// These structs define exactly what we expect the client to send us.

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token       string     `json:"token"`
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	State       game.State `json:"state"`
}

type HabitRequest struct {
	HabitID int `json:"habit_id"`
}

type ItemRequest struct {
	ItemID game.ItemID `json:"item_id"`
}

type BossRequest struct {
	Index int `json:"index"`
}

type StartExpeditionRequest struct {
	Origin *game.Position `json:"origin"` // Nil when the device has no position fix
}

type StepsRequest struct {
	Steps int `json:"steps"`
}

type DismissRequest struct {
	ID int64 `json:"id"`
}

type LanguageRequest struct {
	Language string `json:"language"`
}

// ActionResponse pairs an operation result with the state it produced.
type ActionResponse struct {
	Result any        `json:"result"`
	State  game.State `json:"state"`
}

// Ranker lists the leaderboard.
type Ranker interface {
	Leaderboard(ctx context.Context, limit int) ([]storage.RankEntry, error)
}

// Handler serves the REST API and the WebSocket endpoint.
type Handler struct {
	auth     *auth.Service
	sessions *session.Manager
	ranks    Ranker
	hub      *Hub
}

func NewHandler(a *auth.Service, sessions *session.Manager, ranks Ranker, hub *Hub) *Handler {
	return &Handler{auth: a, sessions: sessions, ranks: ranks, hub: hub}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	// Accounts
	mux.HandleFunc("POST /api/auth/signup", h.HandleSignUp)
	mux.HandleFunc("POST /api/auth/signin", h.HandleSignIn)
	mux.HandleFunc("POST /api/auth/signout", h.withAuth(h.HandleSignOut))

	// Information
	mux.HandleFunc("GET /api/state", h.withSession(h.HandleGetState))
	mux.HandleFunc("GET /api/rankings", h.HandleRankings)

	// Actions
	mux.HandleFunc("POST /api/habits/complete", h.withSession(h.HandleCompleteHabit))
	mux.HandleFunc("POST /api/items/use", h.withSession(h.HandleUseItem))
	mux.HandleFunc("POST /api/gacha/draw", h.withSession(h.HandleDraw))
	mux.HandleFunc("POST /api/bosses/select", h.withSession(h.HandleSelectBoss))
	mux.HandleFunc("POST /api/expedition/start", h.withSession(h.HandleStartExpedition))
	mux.HandleFunc("POST /api/expedition/position", h.withSession(h.HandlePosition))
	mux.HandleFunc("POST /api/expedition/stop", h.withSession(h.HandleStopExpedition))
	mux.HandleFunc("POST /api/health/sync", h.withSession(h.HandleSyncSteps))
	mux.HandleFunc("POST /api/notifications/dismiss", h.withSession(h.HandleDismiss))
	mux.HandleFunc("POST /api/language", h.withSession(h.HandleSetLanguage))

	// Real-time
	mux.HandleFunc("GET /ws", h.HandleWs)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *session.Session)

// withAuth checks the bearer token and stores the player id in the request
// context without opening a session.
func (h *Handler) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}
		claims, err := h.auth.Authenticate(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(auth.WithUserID(r.Context(), claims.Subject)))
	}
}

// withSession authenticates the bearer token and opens the player's session.
func (h *Handler) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.authenticate(w, r, bearerToken(r))
		if !ok {
			return
		}
		next(w, r.WithContext(auth.WithUserID(r.Context(), s.UserID())), s)
	}
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, token string) (*session.Session, bool) {
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return nil, false
	}
	claims, err := h.auth.Authenticate(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return nil, false
	}
	s, err := h.sessions.Open(r.Context(), claims.Subject, claims.Name)
	if err != nil {
		log.Printf("API: open session %s: %v", claims.Subject, err)
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	v := r.Header.Get("Authorization")
	if len(v) > len(prefix) && strings.EqualFold(v[:len(prefix)], prefix) {
		return strings.TrimSpace(v[len(prefix):])
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: encode response: %v", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

// HandleSignUp creates an account, starts the player's session with the
// signup reward and returns a token.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrEmailTaken):
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	case err != nil:
		log.Printf("API: signup: %v", err)
		http.Error(w, "Signup failed", http.StatusInternalServerError)
		return
	}
	h.issue(w, r, u.Email, req.Password, http.StatusCreated)
}

// HandleSignIn checks credentials and returns a token plus the current state.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decode(w, r, &req) {
		return
	}
	h.issue(w, r, req.Email, req.Password, http.StatusOK)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, email, password string, status int) {
	token, u, err := h.auth.SignIn(r.Context(), email, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Printf("API: signin: %v", err)
		http.Error(w, "Signin failed", http.StatusInternalServerError)
		return
	}
	s, err := h.sessions.Open(r.Context(), u.ID, u.DisplayName)
	if err != nil {
		log.Printf("API: open session %s: %v", u.ID, err)
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, AuthResponse{Token: token, UserID: u.ID, DisplayName: u.DisplayName, State: s.Snapshot()})
}

// HandleSignOut revokes the bearer token. The player's session is released
// unless another device still holds a socket open.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(bearerToken(r)); err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	if userID, ok := auth.UserID(r.Context()); ok && !h.hub.Online(userID) {
		h.sessions.Evict(userID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetState returns the player's full session state.
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request, s *session.Session) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// HandleRankings returns the leaderboard. ?limit= caps the rows (default 50).
func (h *Handler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			http.Error(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = n
	}
	board, err := h.ranks.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Printf("API: rankings: %v", err)
		http.Error(w, "Rankings unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleCompleteHabit logs a habit. Unknown or already completed habits come
// back with applied=false.
func (h *Handler) HandleCompleteHabit(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req HabitRequest
	if !decode(w, r, &req) {
		return
	}
	res, st := s.CompleteHabit(req.HabitID)
	writeJSON(w, http.StatusOK, ActionResponse{Result: res, State: st})
}

// HandleUseItem consumes one item. An empty stack comes back with applied=false.
func (h *Handler) HandleUseItem(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req ItemRequest
	if !decode(w, r, &req) {
		return
	}
	res, st := s.UseItem(req.ItemID)
	writeJSON(w, http.StatusOK, ActionResponse{Result: res, State: st})
}

// HandleDraw opens one mystery box.
func (h *Handler) HandleDraw(w http.ResponseWriter, r *http.Request, s *session.Session) {
	reward, st := s.Draw()
	if reward == nil {
		http.Error(w, "Insufficient gems", http.StatusPaymentRequired)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Result: reward, State: st})
}

// HandleSelectBoss switches the current boss.
func (h *Handler) HandleSelectBoss(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req BossRequest
	if !decode(w, r, &req) {
		return
	}
	ok, st := s.SelectBoss(req.Index)
	if !ok {
		http.Error(w, "Boss not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleStartExpedition begins tracking from the given origin.
func (h *Handler) HandleStartExpedition(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req StartExpeditionRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := s.StartExpedition(req.Origin)
	switch {
	case errors.Is(err, game.ErrNoPositionFeed):
		http.Error(w, "No position feed", http.StatusUnprocessableEntity)
		return
	case errors.Is(err, game.ErrExpeditionActive):
		http.Error(w, "Expedition already active", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandlePosition feeds one position sample.
func (h *Handler) HandlePosition(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var pos game.Position
	if !decode(w, r, &pos) {
		return
	}
	if !validPosition(pos) {
		http.Error(w, "Position out of range", http.StatusBadRequest)
		return
	}
	mv, st := s.RecordPosition(pos)
	writeJSON(w, http.StatusOK, ActionResponse{Result: mv, State: st})
}

func validPosition(p game.Position) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// HandleStopExpedition ends tracking and pays out.
func (h *Handler) HandleStopExpedition(w http.ResponseWriter, r *http.Request, s *session.Session) {
	sum, ok, st := s.StopExpedition()
	if !ok {
		http.Error(w, "No active expedition", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Result: sum, State: st})
}

// HandleSyncSteps credits steps from a health source.
func (h *Handler) HandleSyncSteps(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req StepsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Steps < 0 {
		http.Error(w, "steps must not be negative", http.StatusBadRequest)
		return
	}
	gems, st := s.SyncSteps(req.Steps)
	writeJSON(w, http.StatusOK, ActionResponse{Result: map[string]int{"gems": gems}, State: st})
}

// HandleDismiss removes a notification. Unknown ids are not an error.
func (h *Handler) HandleDismiss(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req DismissRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": s.Dismiss(req.ID)})
}

// HandleSetLanguage switches notification language.
func (h *Handler) HandleSetLanguage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req LanguageRequest
	if !decode(w, r, &req) {
		return
	}
	ok, st := s.SetLanguage(req.Language)
	if !ok {
		http.Error(w, "Unsupported language", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleWs upgrades to a WebSocket. Browsers cannot set headers on the
// handshake, so the token may also come from ?token=.
func (h *Handler) HandleWs(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	s, ok := h.authenticate(w, r, token)
	if !ok {
		return
	}
	if ServeWs(h.hub, s.UserID(), w, r) != nil {
		h.hub.Push(s.UserID(), session.EventState, s.Snapshot())
	}
}

// HandleInbound processes messages sent over a player's WebSocket.
func (h *Handler) HandleInbound(userID string, in Inbound) {
	s, ok := h.sessions.Get(userID)
	if !ok {
		return
	}
	switch in.Type {
	case "position":
		var pos game.Position
		if err := json.Unmarshal(in.Payload, &pos); err != nil || !validPosition(pos) {
			log.Printf("WS: %s sent bad position", userID)
			return
		}
		mv, st := s.RecordPosition(pos)
		if mv.Counted || mv.GemsFound > 0 {
			h.hub.Push(userID, session.EventState, st)
		}
	default:
		log.Printf("WS: %s sent unknown message type %q", userID, in.Type)
	}
}
