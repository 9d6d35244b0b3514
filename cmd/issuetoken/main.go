// Command issuetoken signs a development bearer token for an address using
// the server's CHORELEDGER_JWT_SECRET and CHORELEDGER_JWT_ISSUER.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dukerupert/choreledger/internal/auth"
	"github.com/dukerupert/choreledger/internal/config"
)

func main() {
	sub := flag.String("sub", "", "caller address (0x-prefixed, 40 hex digits)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := run(*sub, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "issuetoken:", err)
		os.Exit(1)
	}
}

func run(sub string, ttl time.Duration) error {
	if sub == "" {
		return fmt.Errorf("-sub is required")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireSecret(); err != nil {
		return err
	}
	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}
	tok, err := tokens.Sign(sub, ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
