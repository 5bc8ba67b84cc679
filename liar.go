// Liar Among Us
//
// Players join a numbered room. Each round, every player is secretly shown
// the same question, except for the liar, who gets a different one.
// Everyone answers, the answers are discussed, and the group votes on who
// they think got the odd question. Scores accumulate across rounds.
//
// Features:
// - Rooms keyed by number: /room/:roomid and /room/:roomid/ws
// - One WebSocket per player, joined via a name chosen on the home page
// - Question pairs drawn without replacement per room, never reused
// - The liar is re-rolled every round, independently of prior rounds
// - Ties in the vote force a revote with the same questions and liar
// - Missed the liar: the liar scores 3; naming the liar yourself scores 1
// - Disconnecting mid-round keeps your seat; reconnect and resume where
//   the room is, including your own submitted answer and vote
// - In-browser QR button to share the current room, backed by go-qrcode

package main

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// State is the per-room game phase. Transitions happen only through the
// Room methods in game.go, always under the room lock.
type State int

const (
	StateRoom State = iota
	StateAnswer
	StateDiscussion
	StateVoting
	StateVotingResults
	StateVoteAgain
	StatePoints
)

func (s State) String() string {
	switch s {
	case StateRoom:
		return "ROOM"
	case StateAnswer:
		return "ANSWER"
	case StateDiscussion:
		return "DISCUSSION"
	case StateVoting:
		return "VOTING"
	case StateVotingResults:
		return "VOTING_RESULTS"
	case StateVoteAgain:
		return "VOTE_AGAIN"
	case StatePoints:
		return "POINTS"
	}
	return "UNKNOWN"
}

// Player holds the data we store server-side. Order of joining is kept.
type Player struct {
	Name  string
	Score int
}

// Messages coming from clients
type ClientMessage struct {
	Type   string `json:"action"`           // "submit_answer", "start_voting_request", "submit_vote", "show_points_request", "next_round_request", "vote_again_request"
	Name   string `json:"name,omitempty"`   // submit_answer
	Answer string `json:"answer,omitempty"` // submit_answer
	Voter  string `json:"voter,omitempty"`  // submit_vote
	Target string `json:"target,omitempty"` // submit_vote
}

// PlayerListMessage is broadcast whenever the player list changes.
type PlayerListMessage struct {
	Type    string   `json:"action"` // "players"
	Players []string `json:"players"`
}

// QuestionMessage is sent to each player individually at round start;
// the liar receives the fake question, everyone else the real one.
type QuestionMessage struct {
	Type     string `json:"action"` // "start_round"
	Question string `json:"question"`
}

// AnswersMessage reveals the real question once all answers are in.
type AnswersMessage struct {
	Type         string `json:"action"` // "answers_submitted"
	RealQuestion string `json:"real_question"`
}

// SimpleMessage is for notifications that carry no payload ("start_voting").
type SimpleMessage struct {
	Type string `json:"action"`
}

// VotesMessage carries the tally result. ValidVoting is false on a tie,
// in which case the round is replayed via a revote.
type VotesMessage struct {
	Type        string         `json:"action"` // "votes_submitted"
	Votes       map[string]int `json:"votes"`
	ValidVoting bool           `json:"valid_voting"`
}

// PointsMessage carries the updated scores, the liar's identity and the
// per-player score delta of this round.
type PointsMessage struct {
	Type   string         `json:"action"` // "show_points"
	Points map[string]int `json:"points"`
	Liar   string         `json:"liar"`
	Diff   map[string]int `json:"diff"`
}

// RedirectMessage tells clients to leave the room (global reset).
type RedirectMessage struct {
	Type   string `json:"action"` // "redirect"
	Target string `json:"target"`
}

type Client struct {
	id   string // connection handle, matched on disconnect
	name string
	conn *websocket.Conn
	send chan any
}

// Room is one isolated game session. Every composite
// read-modify-check-broadcast sequence runs under a single acquisition of
// mu; the "record submission, check completion, advance state, broadcast"
// sequences in game.go depend on that for their exactly-once guarantee.
type Room struct {
	id   int
	cfg  *Config
	deck *QuestionDeck

	mu      sync.Mutex
	clients map[*Client]bool
	players []*Player
	state   State

	usedQuestions map[int]bool

	questions   questionPair
	liar        string
	answers     map[string]string // player name -> answer, cleared at round start
	votes       map[string]string // voter name -> accused name, cleared on entry to VOTING
	voteCounts  map[string]int    // last tally, retained for resync
	votedPlayer string
	validVoting bool
	diffPoints  map[string]int // last round's score delta, retained for resync
}

func newRoom(cfg *Config, deck *QuestionDeck, id int) *Room {
	return &Room{
		id:            id,
		cfg:           cfg,
		deck:          deck,
		clients:       make(map[*Client]bool),
		usedQuestions: make(map[int]bool),
		answers:       make(map[string]string),
		votes:         make(map[string]string),
	}
}

func (r *Room) findPlayerLocked(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) playerNamesLocked() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.Name)
	}
	return names
}

func (r *Room) pointsLocked() map[string]int {
	points := make(map[string]int, len(r.players))
	for _, p := range r.players {
		points[p.Name] = p.Score
	}
	return points
}

// sendLocked delivers best-effort: a client whose send buffer is full is
// dropped rather than blocking the room.
func (r *Room) sendLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(r.clients, c)
		close(c.send)
	}
}

func (r *Room) broadcastLocked(msg any) {
	for client := range r.clients {
		r.sendLocked(client, msg)
	}
}

func (r *Room) broadcastPlayersLocked() {
	r.broadcastLocked(PlayerListMessage{
		Type:    "players",
		Players: r.playerNamesLocked(),
	})
}

// addPlayer registers a new player name. Only possible while the room is
// still gathering players.
func (r *Room) addPlayer(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRoom {
		return ErrGameStarted
	}
	if r.findPlayerLocked(name) != nil {
		return ErrNameTaken
	}

	r.players = append(r.players, &Player{Name: name})
	logf(r.cfg, "ROOMS: Player %q joined room %d", name, r.id)

	r.broadcastPlayersLocked()

	return nil
}

// connect attaches a live connection. In ROOM state this doubles as a join
// (the player entry is created if missing); in any other state the client
// is assumed to be rejoining and receives a full resync snapshot instead.
func (r *Room) connect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[c] = true

	if r.state == StateRoom {
		if r.findPlayerLocked(c.name) == nil {
			r.players = append(r.players, &Player{Name: c.name})
		}
		r.broadcastPlayersLocked()
		return
	}

	logf(r.cfg, "ROOMS: Connection %s resynced player %q into room %d (%s)", c.id, c.name, r.id, r.state)
	r.sendLocked(c, r.snapshotLocked(c.name))
}

// disconnect removes the stale connection. The player entry is only removed
// while the room is still gathering players; mid-round the seat is kept so
// the player can reconnect.
func (r *Room) disconnect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.send)
		logf(r.cfg, "ROOMS: Connection %s closed in room %d", c.id, r.id)
	}

	if r.state != StateRoom {
		return
	}

	dst := r.players[:0]
	changed := false
	for _, p := range r.players {
		if p.Name == c.name {
			changed = true
			continue
		}
		dst = append(dst, p)
	}
	r.players = dst

	if changed {
		logf(r.cfg, "ROOMS: Player %q left room %d", c.name, r.id)
		r.broadcastPlayersLocked()
	}
}

// RoomRegistry holds all active rooms, keyed by the caller-supplied room
// number. Rooms are created implicitly on first join and only ever torn
// down all at once by reset.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms map[int]*Room

	cfg  *Config
	deck *QuestionDeck
}

func newRoomRegistry(cfg *Config, deck *QuestionDeck) *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[int]*Room),
		cfg:   cfg,
		deck:  deck,
	}
}

func (reg *RoomRegistry) getRoom(id int) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[id]; ok {
		return room
	}

	room := newRoom(reg.cfg, reg.deck, id)
	reg.rooms[id] = room
	logf(reg.cfg, "ROOMS: Created room %d", id)
	return room
}

func (reg *RoomRegistry) join(id int, name string) error {
	return reg.getRoom(id).addPlayer(name)
}

// reset clears every room and tells every connected client to return to
// the home page.
func (reg *RoomRegistry) reset() int {
	reg.mu.Lock()
	rooms := reg.rooms
	reg.rooms = make(map[int]*Room)
	reg.mu.Unlock()

	for _, room := range rooms {
		room.mu.Lock()
		room.broadcastLocked(RedirectMessage{
			Type:   "redirect",
			Target: "/",
		})
		for c := range room.clients {
			delete(room.clients, c)
			close(c.send)
		}
		room.mu.Unlock()
	}

	logf(reg.cfg, "ROOMS: Reset cleared %d room(s)", len(rooms))
	return len(rooms)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket handler that picks the room based on :roomid
func serveWSForRegistry(cfg *Config, reg *RoomRegistry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID, err := strconv.Atoi(ps.ByName("roomid"))
		if err != nil || roomID < 0 {
			http.Error(w, "invalid room id", http.StatusBadRequest)
			return
		}

		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "missing player name", http.StatusBadRequest)
			return
		}

		room := reg.getRoom(roomID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ROOMS: Upgrade error for room %d: %v", roomID, err)
			return
		}

		client := &Client{
			id:   uuid.NewString(),
			name: name,
			conn: conn,
			send: make(chan any, 8),
		}

		logf(cfg, "ROOMS: Connection %s opened for player %q in room %d", client.id, name, roomID)

		room.connect(client)

		go client.writePump()
		client.readPump(room)
	}
}

func (c *Client) readPump(r *Room) {
	defer func() {
		r.disconnect(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "submit_answer":
			r.submitAnswer(msg.Name, msg.Answer)
		case "start_voting_request":
			r.startVoting()
		case "submit_vote":
			r.submitVote(msg.Voter, msg.Target)
		case "show_points_request":
			r.showPoints()
		case "next_round_request":
			if _, err := r.startRound(); err != nil {
				logf(r.cfg, "GAME: Next round in room %d refused: %v", r.id, err)
			}
		case "vote_again_request":
			r.startVoting()
		default:
			// ignore unknown actions
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// joinHandler handles the home page form: validates the name against the
// room and redirects either into the room or back home with an error.
func joinHandler(cfg *Config, reg *RoomRegistry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, cfg.prefix+"/?error="+url.QueryEscape("Invalid form submission"), http.StatusFound)
			return
		}

		roomID, err := strconv.Atoi(r.PostFormValue("room_id"))
		name := strings.TrimSpace(r.PostFormValue("name"))
		if err != nil || roomID < 0 || name == "" {
			http.Redirect(w, r, cfg.prefix+"/?error="+url.QueryEscape("A room number and a name are required"), http.StatusFound)
			return
		}

		if err := reg.join(roomID, name); err != nil {
			http.Redirect(w, r, cfg.prefix+"/?error="+url.QueryEscape(err.Error()), http.StatusFound)
			return
		}

		http.Redirect(w, r, cfg.prefix+"/room/"+strconv.Itoa(roomID)+"?name="+url.QueryEscape(name), http.StatusFound)
	}
}

// startGameHandler starts the first round of a room over plain HTTP.
func startGameHandler(cfg *Config, reg *RoomRegistry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID, err := strconv.Atoi(ps.ByName("roomid"))
		if err != nil || roomID < 0 {
			http.Error(w, `{"error": "invalid room id"}`, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		started, err := reg.getRoom(roomID).startRound()
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "` + err.Error() + `"}`))
			return
		}

		if !started {
			_, _ = w.Write([]byte(`{"message": "No change."}`))
			return
		}

		_, _ = w.Write([]byte(`{"message": "Game started."}`))
	}
}

func resetHandler(cfg *Config, reg *RoomRegistry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		reg.reset()
		http.Redirect(w, r, cfg.prefix+"/?error="+url.QueryEscape("Reset successful"), http.StatusFound)
	}
}

// QR handler: generates a PNG QR code for the current room URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomid")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /room/:roomid/qr; strip trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerLiarGame sets up routes so that:
//   - /                        → home page with the join form
//   - /join                    → form POST, validates and redirects into a room
//   - /room/:roomid            → HTML client
//   - /room/:roomid/ws         → WebSocket for that room
//   - /room/:roomid/qr         → PNG QR code for that room URL
//   - /start_game/:roomid      → starts the first round
//   - /reset                   → clears all rooms
func registerLiarGame(cfg *Config, mux *httprouter.Router, deck *QuestionDeck) {
	reg := newRoomRegistry(cfg, deck)

	mux.GET(cfg.prefix+"/", serveHomePage(cfg))
	mux.POST(cfg.prefix+"/join", joinHandler(cfg, reg))
	mux.GET(cfg.prefix+"/room/:roomid", serveRoomPage(cfg))
	mux.GET(cfg.prefix+"/room/:roomid/ws", serveWSForRegistry(cfg, reg))
	mux.GET(cfg.prefix+"/room/:roomid/qr", qrHandler)
	mux.POST(cfg.prefix+"/start_game/:roomid", startGameHandler(cfg, reg))
	mux.GET(cfg.prefix+"/reset", resetHandler(cfg, reg))
}
