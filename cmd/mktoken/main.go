package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/teamline-app/teamline/internal/auth"
)

// mktoken mints a JWT for local testing, so a websocket or curl session
// can be opened without going through /auth/login first.
func main() {
	userID := flag.String("user", "", "User ID to embed as subject")
	username := flag.String("name", "", "Username claim (optional)")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "Signing secret (defaults to JWT_SECRET)")
	validity := flag.Duration("validity", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *userID == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "Usage: mktoken -user <user-id> [-name <username>] [-secret <jwt-secret>] [-validity 24h]")
		fmt.Fprintln(os.Stderr, "  Reads the secret from JWT_SECRET if -secret not specified")
		os.Exit(1)
	}

	authn := auth.NewAuthenticator(*secret, "teamline", *validity)
	token, err := authn.GenerateToken(*userID, *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
