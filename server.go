package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	qrSize         = 256
	maxLeaderboard = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(v)
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if err := hub.Admit(ip); err != nil {
			hub.log.Info("connection refused", zap.String("remote", ip), zap.Error(err))
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.Release(ip)
			hub.log.Warn("upgrade error", zap.String("remote", ip), zap.Error(err))
			return
		}

		client := NewClient(hub, conn, ip)
		select {
		case hub.register <- client:
		case <-hub.done:
			hub.Release(ip)
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, hub.rooms.List())
	})

	// Join link for a room as a PNG QR code
	mux.HandleFunc("/qr", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("room")
		if name == "" || hub.rooms.Get(name) == nil {
			http.Error(w, ErrNoRoom.Error(), http.StatusNotFound)
			return
		}
		link := hub.cfg.Server.PublicURL + "/?room=" + url.QueryEscape(name)
		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			hub.log.Error("qr encode failed", zap.String("room", name), zap.Error(err))
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	mux.HandleFunc("/scores", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			http.Error(w, "scores are not persisted", http.StatusNotFound)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > maxLeaderboard {
			limit = 10
		}
		rows, err := hub.db.TopScores(limit)
		if err != nil {
			hub.log.Error("leaderboard query failed", zap.Error(err))
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int{
			"rooms":   hub.rooms.Count(),
			"clients": hub.ClientCount(),
			"conns":   hub.TotalConns(),
		})
	})

	return mux
}
