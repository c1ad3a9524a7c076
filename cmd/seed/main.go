// Package main seeds a business with a starter catalog and vendor roster
// and prints tokens for its owner and a worker.
//
// SEED_BUSINESS_ID selects the business; a new one is generated when unset.
package main

import (
	"context"
	"fmt"
	"os"

	"vendorbook/internal/config"
	appctx "vendorbook/internal/core/context"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/types"
	"vendorbook/internal/domain/auth"
	"vendorbook/internal/domain/catalogs/item"
	"vendorbook/internal/domain/catalogs/vendor"
	"vendorbook/internal/infrastructure/storage/postgres"
	"vendorbook/internal/infrastructure/storage/postgres/catalog_repo"
	"vendorbook/pkg/logger"
)

type seedItem struct {
	name, category string
	price, cost    string
	stock          int64
}

type seedVendor struct {
	name   string
	rate   string
	active bool
}

var (
	items = []seedItem{
		{"Vanilla Cornetto", "cones", "3.50", "2.00", 120},
		{"Chocolate Bar", "bars", "4.00", "2.50", 80},
		{"Strawberry Cup", "cups", "3.00", "1.80", 60},
		{"Mango Kulfi", "kulfi", "2.50", "1.50", 8},
	}
	vendors = []seedVendor{
		{"Sweet Scoops", "8.5", true},
		{"Frozen Delights", "7", true},
		{"Cone Corner", "6.5", false},
	}
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	businessID := id.New()
	if raw := os.Getenv("SEED_BUSINESS_ID"); raw != "" {
		if businessID, err = id.Parse(raw); err != nil {
			log.Fatalw("invalid SEED_BUSINESS_ID", "value", raw, "error", err)
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.MigrateUp(cfg.DatabaseURL); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	txm := postgres.NewTxManager(pool)
	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID:     "seed",
		BusinessID: businessID.String(),
		Roles:      []string{appctx.RoleOwner},
	})

	itemSvc := item.NewService(catalog_repo.NewItemRepo(txm), txm)
	for _, s := range items {
		it := item.NewItem(s.name, s.category, types.MustMoney(s.price), types.MustMoney(s.cost))
		it.Stock = s.stock
		if err := itemSvc.Create(ctx, it); err != nil {
			log.Fatalw("failed to seed item", "name", s.name, "error", err)
		}
	}
	log.Infow("items seeded", "count", len(items))

	vendorSvc := vendor.NewService(catalog_repo.NewVendorRepo(txm), txm)
	for _, s := range vendors {
		v := vendor.NewVendor(s.name, types.MustMoney(s.rate))
		if !s.active {
			v.Status = vendor.StatusInactive
		}
		if err := vendorSvc.Create(ctx, v); err != nil {
			log.Fatalw("failed to seed vendor", "name", s.name, "error", err)
		}
	}
	log.Infow("vendors seeded", "count", len(vendors))

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtCfg.AccessTokenTTL = cfg.AccessTokenTTL
	jwt := auth.NewJWTService(jwtCfg)

	for _, u := range []struct{ user, email, role string }{
		{"owner", "owner@vendorbook.local", appctx.RoleOwner},
		{"worker", "worker@vendorbook.local", appctx.RoleWorker},
	} {
		tok, exp, err := jwt.GenerateAccessToken(auth.TokenRequest{
			UserID:     u.user,
			BusinessID: businessID,
			Email:      u.email,
			Roles:      []string{u.role},
		})
		if err != nil {
			log.Fatalw("failed to issue token", "role", u.role, "error", err)
		}
		fmt.Printf("%s token (expires %s):\n%s\n\n", u.role, exp.Format("2006-01-02 15:04"), tok)
	}

	fmt.Printf("business: %s\n", businessID)
}
