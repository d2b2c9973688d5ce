package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/google/uuid"
)

const matchmakingInterval = time.Second

// GameManager owns every running game and the matchmaking queue.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	pendingMatches   map[string]model.MatchFoundEvent // matches made while the player had no channel
	timeControl      time.Duration
	mu               sync.RWMutex

	done chan struct{}
	once sync.Once
}

// NewGameManager starts the matchmaking loop; Close stops it.
func NewGameManager(timeControl time.Duration) *GameManager {
	gm := newGameManager(timeControl)
	go gm.processMatchmaking(matchmakingInterval)
	return gm
}

func newGameManager(timeControl time.Duration) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		pendingMatches:   make(map[string]model.MatchFoundEvent),
		timeControl:      timeControl,
		done:             make(chan struct{}),
	}
}

func (gm *GameManager) Close() {
	gm.once.Do(func() { close(gm.done) })
}

// RegisterMatchmakingChannel sets ch as playerID's match notification channel. A match made
// before the channel was registered is sent on it straight away.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.registerChannel(playerID, ch)
}

// WaitForMatch registers ch and queues playerID, unless a match was already waiting for them
// and has just been sent on ch.
func (gm *GameManager) WaitForMatch(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.registerChannel(playerID, ch)
	if _, waiting := gm.matchingChannels[playerID]; !waiting {
		return nil
	}
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil && !errors.Is(err, ErrAlreadyQueued) {
		return err
	}
	return nil
}

func (gm *GameManager) registerChannel(playerID string, ch chan string) {
	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		gm.notifyMatch(playerID, event)
	}
}

// UnregisterMatchmakingChannel forgets ch if it is still playerID's channel. Channels are
// only closed by the manager, after a match is sent or when a newer channel replaces them.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
		}
	}
}

// matchOnce pairs the two longest waiting players into a new game and notifies both. It
// reports whether a pair was made.
func (gm *GameManager) matchOnce() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	first, second, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game, err := model.NewGame(gameID, gm.timeControl)
	if err != nil {
		log.Printf("matchmaking: %v", err)
		return false
	}
	for _, p := range []model.Player{first, second} {
		color, err := game.AddPlayer(p.ID)
		if err != nil {
			log.Printf("matchmaking: add %s to %s: %v", p.ID, gameID, err)
			return false
		}
		gm.notifyMatch(p.ID, model.MatchFoundEvent{GameID: gameID, Color: color})
	}
	gm.games[gameID] = game
	log.Printf("matchmaking: paired %s and %s in game %s", first.ID, second.ID, gameID)
	return true
}

// notifyMatch must be called with gm.mu held. Without a channel the match is kept for
// MatchStatus or a later RegisterMatchmakingChannel.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.pendingMatches[playerID] = event
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("matchmaking: marshal event: %v", err)
		return
	}
	select {
	case ch <- string(payload):
	default:
		log.Printf("matchmaking: player %s is not listening", playerID)
	}
	delete(gm.matchingChannels, playerID)
	close(ch)
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}

	game, err := model.NewGame(gameID, gm.timeControl)
	if err != nil {
		return err
	}
	gm.games[gameID] = game
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.PlayerColor, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	delete(gm.pendingMatches, playerID)
	return nil
}

// MatchStatus returns the match made for playerID and forgets it. matched is false while the
// player is still waiting; ErrNotQueued means there is neither a match nor a queue entry.
func (gm *GameManager) MatchStatus(playerID string) (event model.MatchFoundEvent, matched bool, err error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		return event, true, nil
	}
	if gm.queue.Contains(playerID) {
		return model.MatchFoundEvent{}, false, nil
	}
	return model.MatchFoundEvent{}, false, fmt.Errorf("%w: %s", ErrNotQueued, playerID)
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string, from string) ([]string, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(from)
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
