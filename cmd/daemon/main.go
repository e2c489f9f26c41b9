package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"craftlink/go-backend/internal/composition/panelserver"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	rpcAddr := flag.String("rpc-addr", "", "JSON-RPC listen address (default 127.0.0.1:8790)")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	role := flag.String("role", "client", "Viewer role: client | creator")
	userID := flag.String("user-id", "", "Signed-in user ID (optional)")
	userName := flag.String("user-name", "", "Signed-in display name (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("panel-daemon version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := panelserver.NewRPCServer(panelserver.Options{
		RPCAddr:    *rpcAddr,
		ConfigPath: *configPath,
		Role:       *role,
		UserID:     *userID,
		UserName:   *userName,
	})
	if err != nil {
		log.Fatalf("panel-daemon failed to initialize: %v", err)
	}

	log.Println("panel-daemon starting")
	if err := panelserver.Run(ctx, srv); err != nil {
		log.Fatalf("panel-daemon failed: %v", err)
	}
	log.Println("panel-daemon stopped")
}
