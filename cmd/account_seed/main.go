package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"bulkpay/internal/config"
	"bulkpay/internal/repositories"
	"bulkpay/internal/services/account"
)

// Seeds local accounts from SEED_ACCOUNTS, a comma separated list of
// msisdn:display name pairs, e.g. "1234567890:Alice,0987654321:Bob".
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	seed := config.GetEnv("SEED_ACCOUNTS", "")
	if seed == "" {
		log.Fatal("SEED_ACCOUNTS must be set in environment")
	}

	db, err := repositories.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer repositories.CloseDB(db)

	svc := account.NewService(repositories.NewAccountRepository(db), nil)
	ctx := context.Background()

	for _, entry := range strings.Split(seed, ",") {
		msisdn, name, _ := strings.Cut(strings.TrimSpace(entry), ":")
		msisdn = strings.TrimSpace(msisdn)
		if msisdn == "" {
			continue
		}

		_, err := svc.GetByMSISDN(ctx, msisdn)
		if err == nil {
			log.Printf("Account %s already exists", msisdn)
			continue
		}
		if !errors.Is(err, account.ErrAccountNotFound) {
			log.Fatalf("Failed to look up %s: %v", msisdn, err)
		}

		if _, err := svc.Create(ctx, msisdn, strings.TrimSpace(name)); err != nil {
			log.Fatalf("Failed to create account %s: %v", msisdn, err)
		}
		log.Printf("✅ Account %s created", msisdn)
	}
}
