package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/internal/config"
	"ProductCatalog/pkg/kit"
)

// Prints an admin token for the catalog write routes, signed with
// WRITE_TOKEN_SECRET.
func main() {
	log := kit.NewLogger("catalog-token", "info")
	defer func() { _ = log.Sync() }()

	subject := flag.String("subject", "", "token subject (default: random operator id)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config failed", zap.Error(err))
	}
	if cfg.WriteTokenSecret == "" {
		log.Fatal("WRITE_TOKEN_SECRET is required")
	}

	sub := *subject
	if sub == "" {
		sub = "op_" + uuid.NewString()
	}

	tok, err := auth.NewTokenMaker(cfg.WriteTokenSecret).New(sub, auth.RoleAdmin, *ttl)
	if err != nil {
		log.Fatal("sign token failed", zap.Error(err))
	}

	fmt.Println(tok)
}
