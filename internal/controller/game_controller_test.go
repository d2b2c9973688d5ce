package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/benbeisheim/chessrules-backend/internal/middleware"
	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
)

func newTestApp(t *testing.T) (*fiber.App, *service.GameService) {
	t.Helper()
	gm := service.NewGameManager(time.Minute)
	t.Cleanup(gm.Close)
	gs := service.NewGameService(gm)

	app := fiber.New()
	api := app.Group("/api", middleware.EnsurePlayerID())
	NewGameController(gs).Routes(api.Group("/game"))
	return app, gs
}

func do(t *testing.T, app *fiber.App, method, target, player, body string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("X-Player-ID", player)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode body: %v", method, target, err)
	}
	return resp.StatusCode, out
}

func createGame(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := do(t, app, "POST", "/api/game/create", "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("create: status = %d (%v)", status, body)
	}
	id, _ := body["game_id"].(string)
	if id == "" {
		t.Fatalf("create: no game_id in %v", body)
	}
	return id
}

func TestGameRoutes(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)
	id := createGame(t, app)
	base := "/api/game/" + id

	steps := []struct {
		name       string
		method     string
		target     string
		player     string
		body       string
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "join white", method: "POST", target: "/api/game/join/" + id, player: "alice",
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				if body["color"] != "white" {
					t.Errorf("color = %v; want white", body["color"])
				}
			},
		},
		{name: "join black", method: "POST", target: "/api/game/join/" + id, player: "bob", wantStatus: fiber.StatusOK},
		{name: "join full", method: "POST", target: "/api/game/join/" + id, player: "carol", wantStatus: fiber.StatusConflict},
		{name: "join missing", method: "POST", target: "/api/game/join/nope", player: "carol", wantStatus: fiber.StatusNotFound},
		{
			name: "state", method: "GET", target: base, player: "carol",
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				if body["fen"] != chess.DefaultStartingPositionFEN {
					t.Errorf("fen = %v", body["fen"])
				}
				if body["toMove"] != "white" {
					t.Errorf("toMove = %v; want white", body["toMove"])
				}
			},
		},
		{name: "state missing", method: "GET", target: "/api/game/nope", player: "carol", wantStatus: fiber.StatusNotFound},
		{
			name: "moves", method: "GET", target: base + "/moves?from=e2", player: "alice",
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				want := []interface{}{"e3", "e4"}
				if diff := cmp.Diff(want, body["moves"]); diff != "" {
					t.Errorf("moves mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{name: "moves without from", method: "GET", target: base + "/moves", player: "alice", wantStatus: fiber.StatusBadRequest},
		{name: "moves off board", method: "GET", target: base + "/moves?from=z9", player: "alice", wantStatus: fiber.StatusBadRequest},
		{name: "wrong color", method: "POST", target: base + "/move", player: "bob", body: `{"from":"e7","to":"e5"}`, wantStatus: fiber.StatusForbidden},
		{name: "stranger", method: "POST", target: base + "/move", player: "carol", body: `{"from":"e2","to":"e4"}`, wantStatus: fiber.StatusForbidden},
		{name: "illegal", method: "POST", target: base + "/move", player: "alice", body: `{"from":"e2","to":"e5"}`, wantStatus: fiber.StatusUnprocessableEntity},
		{name: "opponent piece", method: "POST", target: base + "/move", player: "alice", body: `{"from":"e7","to":"e5"}`, wantStatus: fiber.StatusUnprocessableEntity},
		{name: "malformed body", method: "POST", target: base + "/move", player: "alice", body: `{"from":"e2"}`, wantStatus: fiber.StatusBadRequest},
		{name: "off board", method: "POST", target: base + "/move", player: "alice", body: `{"from":"e2","to":"e9"}`, wantStatus: fiber.StatusBadRequest},
		{name: "move missing game", method: "POST", target: "/api/game/nope/move", player: "alice", body: `{"from":"e2","to":"e4"}`, wantStatus: fiber.StatusNotFound},
		{
			name: "move", method: "POST", target: base + "/move", player: "alice", body: `{"from":"e2","to":"e4"}`,
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				if body["toMove"] != "black" {
					t.Errorf("toMove = %v; want black", body["toMove"])
				}
				last, _ := body["lastMove"].(map[string]interface{})
				if last["from"] != "e2" || last["to"] != "e4" {
					t.Errorf("lastMove = %v", body["lastMove"])
				}
			},
		},
	}

	for _, s := range steps {
		status, body := do(t, app, s.method, s.target, s.player, s.body)
		if status != s.wantStatus {
			t.Errorf("%s: status = %d; want %d (%v)", s.name, status, s.wantStatus, body)
			continue
		}
		if status >= 400 {
			if _, ok := body["error"]; !ok {
				t.Errorf("%s: error response without error field: %v", s.name, body)
			}
		}
		if s.check != nil {
			s.check(t, body)
		}
	}
}

func TestMatchmakingRoutes(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	steps := []struct {
		method, target string
		wantStatus     int
	}{
		{"POST", "/api/game/matchmaking/join", fiber.StatusOK},
		{"POST", "/api/game/matchmaking/join", fiber.StatusConflict},
		{"POST", "/api/game/matchmaking/leave", fiber.StatusOK},
		{"POST", "/api/game/matchmaking/leave", fiber.StatusNotFound},
		{"GET", "/api/game/matchmaking/status", fiber.StatusNotFound},
	}
	for i, s := range steps {
		if status, body := do(t, app, s.method, s.target, "dave", ""); status != s.wantStatus {
			t.Errorf("step %d %s: status = %d; want %d (%v)", i, s.target, status, s.wantStatus, body)
		}
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("lookup: %w", service.ErrGameNotFound), want: fiber.StatusNotFound},
		{err: service.ErrNotQueued, want: fiber.StatusNotFound},
		{err: chess.ErrOutOfBounds, want: fiber.StatusBadRequest},
		{err: service.ErrNotInGame, want: fiber.StatusForbidden},
		{err: service.ErrWrongColor, want: fiber.StatusForbidden},
		{err: service.ErrGameFull, want: fiber.StatusConflict},
		{err: service.ErrGameOver, want: fiber.StatusConflict},
		{err: chess.ErrNotYourTurn, want: fiber.StatusUnprocessableEntity},
		{err: chess.ErrKingInCheck, want: fiber.StatusUnprocessableEntity},
		{err: errors.New("boom"), want: fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d; want %d", tt.err, got, tt.want)
		}
	}
}

func TestHandleMessage(t *testing.T) {
	t.Parallel()
	_, gs := newTestApp(t)
	id, err := gs.CreateGame()
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	gs.JoinGame(id, "alice")
	gs.JoinGame(id, "bob")
	wsc := NewWebSocketController(gs)

	move, err := ws.NewMessage(ws.MessageTypeMove, model.WSMove{From: "d2", To: "d4"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if err := wsc.handleMessage(id, "alice", move); err != nil {
		t.Fatalf("handleMessage(move): %v", err)
	}
	state, err := gs.GetGameState(id)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if state.ToMove != model.PlayerColorBlack {
		t.Errorf("ToMove = %q; want %q", state.ToMove, model.PlayerColorBlack)
	}

	if err := wsc.handleMessage(id, "alice", move); !errors.Is(err, service.ErrWrongColor) {
		t.Errorf("repeat move: got err=%v want %v", err, service.ErrWrongColor)
	}
	if err := wsc.handleMessage(id, "bob", ws.Message{Type: ws.MessageTypeMove, Payload: []byte(`"e7e5"`)}); err == nil {
		t.Error("expected error for malformed payload")
	}
	if err := wsc.handleMessage(id, "bob", ws.Message{Type: "resign"}); err == nil {
		t.Error("expected error for unknown message type")
	}
}

func TestSeatsSurviveLaterRequests(t *testing.T) {
	t.Parallel()
	app, gs := newTestApp(t)
	id := createGame(t, app)

	for _, p := range []string{"alice", "bob"} {
		if status, body := do(t, app, "POST", "/api/game/join/"+id, p, ""); status != fiber.StatusOK {
			t.Fatalf("join %s: status = %d (%v)", p, status, body)
		}
	}
	do(t, app, "GET", "/api/game/"+id, "zzzzz", "")
	do(t, app, "POST", "/api/game/matchmaking/join", "yyyyyyyy", "")

	state, err := gs.GetGameState(id)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if state.Players.White.ID != "alice" || state.Players.Black.ID != "bob" {
		t.Errorf("seats = %q/%q; want alice/bob", state.Players.White.ID, state.Players.Black.ID)
	}
	if status, body := do(t, app, "POST", "/api/game/"+id+"/move", "alice", `{"from":"e2","to":"e4"}`); status != fiber.StatusOK {
		t.Errorf("move: status = %d (%v)", status, body)
	}
}

func TestMatchStatusRoute(t *testing.T) {
	t.Parallel()
	app, gs := newTestApp(t)

	for _, p := range []string{"erin", "frank"} {
		if status, body := do(t, app, "POST", "/api/game/matchmaking/join", p, ""); status != fiber.StatusOK {
			t.Fatalf("join %s: status = %d (%v)", p, status, body)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		status, body := do(t, app, "GET", "/api/game/matchmaking/status", "frank", "")
		if status != fiber.StatusOK {
			t.Fatalf("status: %d (%v)", status, body)
		}
		if body["status"] == "matched" {
			if body["color"] != "black" {
				t.Errorf("color = %v; want black", body["color"])
			}
			id, _ := body["gameId"].(string)
			state, err := gs.GetGameState(id)
			if err != nil {
				t.Fatalf("GetGameState(%s): %v", id, err)
			}
			if state.Players.Black.ID != "frank" {
				t.Errorf("black = %q; want frank", state.Players.Black.ID)
			}
			return
		}
		if body["status"] != "queued" {
			t.Fatalf("unexpected body: %v", body)
		}
		if time.Now().After(deadline) {
			t.Fatal("no match within 5s")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
