// Command admintoken prints a bearer token for the admin console.
//
//	ADMIN_JWT_SECRET=... admintoken -subject ops@example.com -ttl 12h
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/neomorfeo/sendstack/internal/adapter/jwttoken"
	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "admintoken:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("admintoken", flag.ContinueOnError)
	subject := fs.String("subject", "", "who the token is for (required)")
	ttl := fs.Duration("ttl", 12*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return errors.New("-subject is required")
	}
	if *ttl <= 0 {
		return errors.New("-ttl must be positive")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.AdminJWTSecret == "" {
		return errors.New("ADMIN_JWT_SECRET is not set")
	}

	token, err := jwttoken.NewService(cfg.AdminJWTSecret, clock.NewSystem()).Issue(*subject, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
