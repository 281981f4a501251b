package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// ipRateLimiter tracks last connection time per IP to prevent abuse
type ipRateLimiter struct {
	mu    sync.Mutex
	times map[string]time.Time
}

func newIPRateLimiter() *ipRateLimiter {
	rl := &ipRateLimiter{times: make(map[string]time.Time)}
	// Cleanup stale entries every 60s
	go func() {
		for range time.Tick(60 * time.Second) {
			rl.mu.Lock()
			cutoff := time.Now().Add(-time.Duration(IPCooldownSec) * time.Second)
			for ip, t := range rl.times {
				if t.Before(cutoff) {
					delete(rl.times, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

// allow returns true if this IP can connect, and records the attempt
func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if last, ok := rl.times[ip]; ok {
		if time.Since(last) < time.Duration(IPCooldownSec)*time.Second {
			return false
		}
	}
	rl.times[ip] = time.Now()
	return true
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development; tighten in production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Enable per-message deflate compression (RFC 7692)
	EnableCompression: true,
}

// sendErrorAndClose sends an error message via WebSocket then closes the connection
func sendErrorAndClose(ws *websocket.Conn, msg string) {
	data, _ := json.Marshal(ErrorMsg{Type: MsgError, Message: msg})
	_ = ws.WriteMessage(websocket.TextMessage, data)
	ws.Close()
}

// envOr returns the env var value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("ignoring bad %s=%q", key, v)
	}
	return def
}

func main() {
	// Optional .env overrides; absence is fine.
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded .env overrides")
	}
	port := envOr("ARENA_PORT", ServerPort)
	staticDir := envOr("ARENA_STATIC_DIR", StaticDir)
	snapshotFile := os.Getenv("ARENA_SNAPSHOT_FILE")
	botCount := envIntOr("ARENA_BOT_COUNT", BotCount)

	world := NewWorld(DefaultBounds())
	conns := NewConnManager()
	loop := NewGameLoop(world, conns)
	rateLimiter := newIPRateLimiter()

	// Progression/currency sink: drained once per tick from the loop's
	// outgoing event queue.
	tracker := NewProgressionTracker()
	loop.Events().RegisterSink(tracker.HandleEvent)

	if snapshotFile != "" {
		if n, err := LoadSnapshotFile(world, snapshotFile); err == nil {
			log.Printf("restored %d owners from %s", n, snapshotFile)
		} else if !os.IsNotExist(err) {
			log.Printf("snapshot load failed: %v", err)
		}
	}

	loop.Bots().Prepopulate(botCount)

	// WebSocket handler
	http.HandleFunc(WebSocketPath, func(w http.ResponseWriter, r *http.Request) {
		// Extract client IP (handle X-Forwarded-For for reverse proxies)
		ip := r.Header.Get("X-Forwarded-For")
		if ip == "" {
			ip, _, _ = net.SplitHostPort(r.RemoteAddr)
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws upgrade error: %v", err)
			return
		}

		// Check limits after upgrade so client can receive error messages
		if conns.Count() >= MaxPlayers {
			sendErrorAndClose(ws, "Server full. Please try again later.")
			return
		}
		if !rateLimiter.allow(ip) {
			sendErrorAndClose(ws, "Too many connections. Please wait 30 seconds.")
			return
		}

		ws.EnableWriteCompression(true)

		conn := NewConn(ws)
		conns.Add(conn)
		log.Printf("player connected: %s", conn.ID)

		// Send welcome immediately so client knows its ID and world dimensions
		_ = conn.Send(WelcomeMsg{
			Type:        MsgWelcome,
			ID:          conn.ID,
			WorldWidth:  world.Bounds.Width(),
			WorldHeight: world.Bounds.Height(),
			Color:       randomColor(),
		})

		onJoin := func(c *Conn, name string) {
			world.mu.Lock()
			// Drop any previous aggregate if reconnecting / respawning
			world.RemovePlayer(c.ID)
			p := NewPlayer(c.ID, name, randomColor(), ControllerHuman, world.Bounds)
			world.AddPlayer(p)
			world.mu.Unlock()
			log.Printf("player joined: %s (%s)", name, c.ID)
		}

		onDisconnect := func(c *Conn) {
			conns.Remove(c.ID)
			world.mu.Lock()
			world.RemovePlayer(c.ID)
			world.mu.Unlock()
			log.Printf("player disconnected: %s", c.ID)
		}

		// Blocking read loop — runs until client disconnects
		conn.ReadLoop(onJoin, onDisconnect)
	})

	// Serve static client files
	fs := http.FileServer(http.Dir(staticDir))
	http.Handle("/", fs)

	// Save a snapshot and stop the loop cleanly on shutdown signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		if snapshotFile != "" {
			if err := SaveSnapshotFile(world, snapshotFile); err != nil {
				log.Printf("snapshot save failed: %v", err)
			} else {
				log.Printf("saved snapshot to %s", snapshotFile)
			}
		}
		loop.Stop()
		os.Exit(0)
	}()

	loop.Start()

	log.Printf("server listening on %s (world %.0fx%.0f, %d bots)",
		port, world.Bounds.Width(), world.Bounds.Height(), botCount)
	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
