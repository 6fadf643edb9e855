package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/blackwater-gg/craftworks/pkg/auth"
	"github.com/blackwater-gg/craftworks/pkg/config"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	"github.com/blackwater-gg/craftworks/pkg/logger"
)

// Issues a signed service token for a caller of the API. Tokens are minted
// out of band; the API itself never issues them.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "mint"})

	_ = godotenv.Load()

	userID := flag.String("user", "", "subject user id")
	username := flag.String("name", "", "display name embedded in the token")
	role := flag.String("role", string(enums.ActorRoleCrafter), "actor role: crafter|handler|admin")
	minutes := flag.Int("minutes", 0, "override CRAFTWORKS_JWT_EXPIRATION_MINUTES")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "loading config", err)
		os.Exit(1)
	}

	jwtCfg := cfg.JWT
	if *minutes > 0 {
		jwtCfg.ExpirationMinutes = *minutes
	}

	token, err := auth.MintAccessToken(jwtCfg, time.Now().UTC(), auth.AccessTokenPayload{
		UserID:   *userID,
		Username: *username,
		Role:     enums.ActorRole(*role),
	})
	if err != nil {
		logg.Error(ctx, "minting token", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
