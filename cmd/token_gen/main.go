package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aeroshieldgt/enviro-api/internal/tokens"
)

// Issues an operator token for the protected endpoints (manual cycle
// trigger, test sends).
func main() {
	operator := flag.String("operator", "ops@local", "Operator identity for the token subject")
	role := flag.String("role", "operator", "Role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	key := os.Getenv("JWT_SECRET")
	if key == "" {
		key = "dev-secret-do-not-use-in-prod"
	}

	mgr := tokens.NewManager(key, *ttl)
	token, err := mgr.GenerateToken(*operator, *role)
	if err != nil {
		panic(err)
	}
	fmt.Println(token)
}
