package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML config (default: config.toml if present)")
	addr := flag.String("addr", "", "HTTP listen address, overrides server.addr")
	schemaDir := flag.String("schema", "", "write packet JSON schemas into this directory and exit")
	issueToken := flag.String("issue-token", "", "print a session token for this nickname and exit")
	elite := flag.Bool("elite", false, "with -issue-token: allow elite characters")
	flag.Parse()

	if *schemaDir != "" {
		names, err := writeSchemas(*schemaDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "schema: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %d schemas to %s\n", len(names), *schemaDir)
		return
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Auth.JWTSecret == "" {
		log.Warn("no JWT secret configured, tokens will not survive a restart")
	}
	auth := NewAuth(cfg.Auth)

	if *issueToken != "" {
		tok, err := auth.IssueToken(SessionClaims{Nickname: *issueToken, Account: *issueToken, Elite: *elite})
		if err != nil {
			log.Fatal("issue token", zap.Error(err))
		}
		fmt.Println(tok)
		return
	}

	if err := run(cfg, auth, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *Config, auth *Auth, log *zap.Logger) error {
	maps, err := DefaultMaps()
	if err != nil {
		return fmt.Errorf("load maps: %w", err)
	}

	var db *DB
	if cfg.Database.Path != "" {
		if db, err = OpenDB(cfg.Database.Path); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
	}
	scores := NewScoreWriter(db, cfg.Database.FlushInterval, log)
	defer scores.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rooms := NewRoomManager(ctx, cfg, maps, NewTables(), scores, log)
	defer rooms.Shutdown()

	hub := NewHub(cfg, rooms, auth, db, log)
	go hub.Run(ctx)

	server := &http.Server{Addr: cfg.Server.Addr, Handler: SetupRoutes(hub)}
	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Server.Addr), zap.Strings("maps", maps.IDs()))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return server.Shutdown(shutdownCtx)
}
