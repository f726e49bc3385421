package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type StatusResponse struct {
	Settings         GameSettingsDTO   `json:"settings"`
	Config           Config            `json:"config"`
	NextPlayer       int               `json:"next_player"`
	Winner           int               `json:"winner"`
	BoardSize        int               `json:"board_size"`
	Board            [][]int           `json:"board"`
	Status           string            `json:"status"`
	History          []historyEntryDTO `json:"history"`
	WinReason        string            `json:"win_reason"`
	WinningLine      []Move            `json:"winning_line"`
	CapturedBlack    int               `json:"captured_black"`
	CapturedWhite    int               `json:"captured_white"`
	CaptureWinStones int               `json:"capture_win_stones"`
	AiThinking       bool              `json:"ai_thinking"`
	TurnStartedAtMs  int64             `json:"turn_started_at_ms"`
}

type GameSettingsDTO struct {
	Mode        string `json:"mode"`
	HumanPlayer int    `json:"human_player"`
}

type apiMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type historyEntryDTO struct {
	Index             int     `json:"index"`
	X                 int     `json:"x"`
	Y                 int     `json:"y"`
	Player            int     `json:"player"`
	ElapsedMs         float64 `json:"elapsed_ms"`
	IsAi              bool    `json:"is_ai"`
	CapturedCount     int     `json:"captured_count"`
	CapturedPositions []Move  `json:"captured_positions"`
	Depth             int     `json:"depth"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type resetPayload struct {
	History          []historyEntryDTO `json:"history"`
	NextPlayer       int               `json:"next_player"`
	Winner           int               `json:"winner"`
	Status           string            `json:"status"`
	BoardSize        int               `json:"board_size"`
	CaptureWinStones int               `json:"capture_win_stones"`
	TurnStartedAtMs  int64             `json:"turn_started_at_ms"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	config, err := LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	logger, err := newLogger(config.LogDebug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	configStore := NewConfigStore(config)
	controller := NewGameController(DefaultGameSettings(), configStore, logger)

	var cacheStore *CacheStore
	if config.CacheDir != "" {
		cacheStore, err = NewCacheStore(config.CacheDir)
		if err != nil {
			logger.Errorw("cache store unavailable, running without persistence", zap.Error(err))
		} else {
			defer cacheStore.Close()
			restoreAgentCaches(controller, cacheStore, logger)
		}
	}
	persistCaches := func() {
		if cacheStore == nil {
			return
		}
		for i, agent := range controller.Agents() {
			name := agentSnapshotName(i)
			if err := cacheStore.Save(name, agent.SnapshotCache()); err != nil {
				logger.Errorw("persist agent cache failed", "name", name, zap.Error(err))
			}
		}
	}
	defer persistCaches()

	hub := NewHub()
	ghostHub := NewGhostHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller.SetGhostPublisher(
		func() bool { return ghostHub.HasClients() && configStore.Get().GhostMode },
		func(payload ghostPayload) {
			ghostHub.Publish(payload)
		},
	)

	go hub.Run(ctx.Done())
	go ghostHub.Run(ctx.Done())
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if controller.Tick() {
					if entry, ok := controller.LatestHistoryEntry(); ok {
						hub.broadcastHistory <- historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}}
					}
					hub.broadcastStatus <- controllerStatus(controller, configStore)
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller, configStore))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		settings := settingsFromDTO(payload.Settings, DefaultGameSettings())
		controller.StartGame(settings)
		writeJSON(w, http.StatusOK, controllerStatus(controller, configStore))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		settings := controller.Settings()
		controller.Reset(settings)
		writeJSON(w, http.StatusOK, controllerStatus(controller, configStore))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
			Config   *Config          `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Config != nil {
			configStore.Update(*payload.Config)
			controller.ResetForConfigChange()
		}
		if payload.Settings != nil {
			settings := settingsFromDTO(*payload.Settings, controller.Settings())
			controller.UpdateSettings(settings)
		}
		hub.broadcastSettings <- settingsPayload{
			Settings: controllerSettingsDTO(controller.Settings()),
			Config:   configStore.Get(),
		}
		writeJSON(w, http.StatusOK, controllerStatus(controller, configStore))
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		applied, errMsg := controller.ApplyHumanMove(Move{X: payload.X, Y: payload.Y})
		if !applied {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		if entry, ok := controller.LatestHistoryEntry(); ok {
			hub.broadcastHistory <- historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}}
		}
		hub.broadcastStatus <- controllerStatus(controller, configStore)
		writeJSON(w, http.StatusOK, controllerStatus(controller, configStore))
	})

	r.Get("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controller.AgentCacheSizes())
	})

	r.Delete("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		controller.ResetForConfigChange()
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, configStore, w, r)
	})
	r.Get("/ws/ghost", func(w http.ResponseWriter, r *http.Request) {
		serveGhostWS(ghostHub, w, r)
	})

	server := &http.Server{
		Addr:    config.ListenAddr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger.Infow("listening", "addr", config.ListenAddr)
	select {
	case <-sigCtx.Done():
		logger.Infow("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			logger.Errorw("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			logger.Errorw("forced close failed", zap.Error(closeErr))
		}
	}
	cancel()
}

func restoreAgentCaches(controller *GameController, store *CacheStore, logger *zap.SugaredLogger) {
	for i, agent := range controller.Agents() {
		name := agentSnapshotName(i)
		snapshot, ok, err := store.Load(name)
		if err != nil {
			logger.Errorw("restore agent cache failed", "name", name, zap.Error(err))
			continue
		}
		if ok {
			agent.RestoreCache(snapshot)
			logger.Infow("restored agent cache", "name", name, "tt_entries", len(snapshot.TT))
		}
	}
}

func agentSnapshotName(index int) string {
	if index == 0 {
		return "agent-0"
	}
	return "agent-1"
}

func serveWS(hub *Hub, controller *GameController, configStore *ConfigStore, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := newClient()
	hub.Register(client)

	status := controllerStatus(controller, configStore)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			status := controllerStatus(controller, configStore)
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})
		}
	}
}

func controllerStatus(controller *GameController, configStore *ConfigStore) StatusResponse {
	state := controller.State()
	settings := controller.Settings()
	return StatusResponse{
		Settings:         controllerSettingsDTO(settings),
		Config:           configStore.Get(),
		NextPlayer:       playerToInt(state.ToMove),
		Winner:           winnerFromStatus(state.Status),
		BoardSize:        state.Board.Size(),
		Board:            boardToSlice(state.Board),
		Status:           state.Status.String(),
		History:          historyToDTO(controller.History()),
		WinReason:        winReasonFromState(state),
		WinningLine:      append([]Move(nil), state.WinningLine...),
		CapturedBlack:    state.CapturedBlack,
		CapturedWhite:    state.CapturedWhite,
		CaptureWinStones: settings.CaptureWinStones,
		AiThinking:       controller.AiThinking(),
		TurnStartedAtMs:  controller.CurrentTurnStartedAtMs(),
	}
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	settings := controller.Settings()
	return resetPayload{
		History:          historyToDTO(controller.History()),
		NextPlayer:       playerToInt(state.ToMove),
		Winner:           winnerFromStatus(state.Status),
		Status:           state.Status.String(),
		BoardSize:        state.Board.Size(),
		CaptureWinStones: settings.CaptureWinStones,
		TurnStartedAtMs:  controller.CurrentTurnStartedAtMs(),
	}
}

func winReasonFromState(state GameState) string {
	if winnerFromStatus(state.Status) == 0 {
		return ""
	}
	if len(state.WinningLine) > 0 {
		return "alignment"
	}
	return "capture"
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	switch dto.Mode {
	case "ai_vs_ai":
		settings.BlackKind = PlayerAI
		settings.WhiteKind = PlayerAI
	case "human_vs_human":
		settings.BlackKind = PlayerHuman
		settings.WhiteKind = PlayerHuman
	case "ai_vs_human":
		if dto.HumanPlayer == 2 {
			settings.BlackKind = PlayerAI
			settings.WhiteKind = PlayerHuman
		} else {
			settings.BlackKind = PlayerHuman
			settings.WhiteKind = PlayerAI
		}
	}
	return settings
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	mode := "ai_vs_human"
	if settings.BlackKind == PlayerAI && settings.WhiteKind == PlayerAI {
		mode = "ai_vs_ai"
	} else if settings.BlackKind == PlayerHuman && settings.WhiteKind == PlayerHuman {
		mode = "human_vs_human"
	}
	humanPlayer := 0
	if settings.BlackKind == PlayerHuman {
		humanPlayer = 1
	} else if settings.WhiteKind == PlayerHuman {
		humanPlayer = 2
	}
	return GameSettingsDTO{Mode: mode, HumanPlayer: humanPlayer}
}

func boardToSlice(board Board) [][]int {
	size := board.Size()
	result := make([][]int, size)
	for y := 0; y < size; y++ {
		result[y] = make([]int, size)
		for x := 0; x < size; x++ {
			result[y][x] = cellToInt(board.At(x, y))
		}
	}
	return result
}

func cellToInt(cell Cell) int {
	switch cell {
	case CellBlack:
		return 1
	case CellWhite:
		return 2
	default:
		return 0
	}
}

func playerToInt(player PlayerColor) int {
	if player == PlayerBlack {
		return 1
	}
	return 2
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusBlackWon:
		return 1
	case StatusWhiteWon:
		return 2
	default:
		return 0
	}
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryToDTO(entry))
	}
	return result
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		Index:             entry.Index,
		X:                 entry.Move.X,
		Y:                 entry.Move.Y,
		Player:            playerToInt(entry.Player),
		ElapsedMs:         entry.ElapsedMs,
		IsAi:              entry.IsAi,
		CapturedCount:     entry.CapturedCount,
		CapturedPositions: append([]Move(nil), entry.CapturedPositions...),
		Depth:             entry.Depth,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
