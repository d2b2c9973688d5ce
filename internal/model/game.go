package model

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

const (
	ResolveCheckmate = "checkmate"
	ResolveStalemate = "stalemate"
	ResolveTimeout   = "timeout"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game is one board with its two seats, clocks and observers. The board is only touched with
// mu held.
type Game struct {
	ID          string
	mu          sync.Mutex
	board       *chess.Board
	white       Player
	black       Player
	history     []string
	lastMove    *SimpleMove
	resolve     *string
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
}

type GameState struct {
	Board       *BoardState `json:"boardState"`
	ToMove      PlayerColor `json:"toMove"`
	MoveHistory []string    `json:"moveHistory"`
	IsCheck     bool        `json:"isCheck"`
	Resolve     *string     `json:"resolve"`
	FEN         string      `json:"fen"`
	LastMove    *SimpleMove `json:"lastMove"`
	Players     struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

// NewGame starts a game from the standard position unless opts say otherwise. Each side gets
// timeControl on its clock.
func NewGame(id string, timeControl time.Duration, opts ...chess.Option) (*Game, error) {
	board, err := chess.NewBoard(opts...)
	if err != nil {
		return nil, fmt.Errorf("new game %s: %w", id, err)
	}
	return &Game{
		ID:          id,
		board:       board,
		history:     make([]string, 0),
		connections: NewGameConnections(),
		whiteClock:  NewClock(timeControl),
		blackClock:  NewClock(timeControl),
	}, nil
}

// AddPlayer seats playerID on the first free color. A player already seated gets their color
// back. Filling the second seat starts the clock of the side to move.
func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.colorOf(playerID); ok {
		return color, nil
	}
	if g.white.ID == "" {
		g.white = Player{ID: playerID, Color: PlayerColorWhite}
		return PlayerColorWhite, nil
	}
	if g.black.ID == "" {
		g.black = Player{ID: playerID, Color: PlayerColorBlack}
		g.startClock()
		return PlayerColorBlack, nil
	}
	return "", ErrGameFull
}

func (g *Game) startClock() {
	if g.resolve == nil && g.white.ID != "" && g.black.ID != "" {
		g.clockFor(colorOf(g.board.Turn())).Start()
	}
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state()
}

func (g *Game) state() GameState {
	toMove := g.board.Turn()
	s := GameState{
		Board:       newBoardState(g.board),
		ToMove:      colorOf(toMove),
		MoveHistory: append([]string{}, g.history...),
		IsCheck:     g.board.IsInCheck(toMove),
		Resolve:     g.resolve,
		FEN:         g.board.FEN(),
		LastMove:    g.lastMove,
	}
	s.Players.White = ClientPlayer{ID: g.white.ID, Color: PlayerColorWhite, TimeLeft: g.whiteClock.Tenths()}
	s.Players.Black = ClientPlayer{ID: g.black.ID, Color: PlayerColorBlack, TimeLeft: g.blackClock.Tenths()}
	return s
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) colorOf(playerID string) (PlayerColor, bool) {
	switch {
	case playerID == "":
		return "", false
	case g.white.ID == playerID:
		return PlayerColorWhite, true
	case g.black.ID == playerID:
		return PlayerColorBlack, true
	default:
		return "", false
	}
}

// CanSpectate reports whether the game still has an open seat.
func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.white.ID == "" || g.black.ID == ""
}

// LegalMoves lists the squares the piece on from can move to without leaving its king in check.
func (g *Game) LegalMoves(from string) ([]string, error) {
	at, err := chess.ParseCoordinate(from)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	dests := chess.Destinations(g.board.LegalMoves(at))
	out := make([]string, 0, len(dests))
	for _, c := range dests {
		out = append(out, squareName(c))
	}
	return out, nil
}

// MakeMove plays move for playerID and broadcasts the resulting state to every connection.
// The broadcast happens before the game is unlocked, so connections see states in move order.
func (g *Game) MakeMove(playerID string, move WSMove) (GameState, error) {
	from, err := chess.ParseCoordinate(move.From)
	if err != nil {
		return GameState{}, err
	}
	to, err := chess.ParseCoordinate(move.To)
	if err != nil {
		return GameState{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	state, err := g.makeMove(playerID, from, to)
	if err != nil {
		return GameState{}, err
	}

	g.broadcastState(state)
	return state, nil
}

func (g *Game) makeMove(playerID string, from, to chess.Coordinate) (GameState, error) {
	if g.resolve != nil {
		return GameState{}, fmt.Errorf("%w: %s", ErrGameOver, *g.resolve)
	}
	color, ok := g.colorOf(playerID)
	if !ok {
		return GameState{}, ErrNotInGame
	}
	if color.chessColor() != g.board.Turn() {
		return GameState{}, fmt.Errorf("%w: %s to move", ErrWrongColor, g.board.Turn())
	}

	clock := g.clockFor(color)
	if clock.Expired() {
		clock.Stop()
		g.setResolve(ResolveTimeout)
		return GameState{}, fmt.Errorf("%w: %s ran out of time", ErrGameOver, color)
	}

	text := g.board.MoveText(from, to)
	mv, err := g.board.Move(from, to)
	if err != nil {
		return GameState{}, err
	}
	clock.Stop()

	g.history = append(g.history, text)
	g.lastMove = &SimpleMove{
		From: squareName(mv.Start),
		To:   squareName(mv.End),
		Kind: mv.Kind.String(),
		Text: text,
	}

	next := g.board.Turn()
	switch {
	case g.board.IsCheckmate(next):
		g.setResolve(ResolveCheckmate)
	case !g.board.HasLegalMove(next):
		g.setResolve(ResolveStalemate)
	default:
		g.startClock()
	}
	return g.state(), nil
}

func (g *Game) setResolve(result string) {
	g.resolve = &result
}

func (g *Game) clockFor(color PlayerColor) *Clock {
	if color == PlayerColorBlack {
		return g.blackClock
	}
	return g.whiteClock
}

// RegisterConnection attaches conn to the game and sends it the current state. Only seated
// players may connect once both seats are taken; a second connection for the same player is
// closed.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, seated := g.colorOf(playerID)
	if !seated && !g.canSpectate() {
		return fmt.Errorf("%w: %s", ErrNotInGame, playerID)
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		_ = conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Printf("game %s: registered connection for player %s", g.ID, playerID)

	g.broadcastState(g.state())
	return nil
}

// UnregisterConnection forgets playerID's connection if conn is still the registered one.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		log.Printf("game %s: unregistered connection for player %s", g.ID, playerID)
	}
}

// broadcastState sends state to every connection, dropping those that fail. Callers hold g.mu.
func (g *Game) broadcastState(state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Printf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("game %s: send state to player %s: %v", g.ID, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
}
