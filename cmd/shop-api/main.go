package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mcampos87/comercio-api/internal/category"
	"github.com/mcampos87/comercio-api/internal/config"
	"github.com/mcampos87/comercio-api/internal/dashboard"
	"github.com/mcampos87/comercio-api/internal/inventory"
	"github.com/mcampos87/comercio-api/internal/notification"
	"github.com/mcampos87/comercio-api/internal/order"
	"github.com/mcampos87/comercio-api/internal/payment"
	"github.com/mcampos87/comercio-api/internal/product"
	"github.com/mcampos87/comercio-api/internal/settings"
	"github.com/mcampos87/comercio-api/internal/user"
)

// @title Comercio API
// @version 1.0
// @description E-commerce backend: catalog, orders, payments, inventory.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("[main] redis unavailable (%v), rate limiting disabled", err)
		rdb = nil
	}

	registry := payment.NewRegistry().
		Register("MOCK", payment.NewMockProvider())

	orders := order.NewPGRepo(pool)
	payments := payment.NewPGRepo(pool)

	d := deps{
		cfg:           cfg,
		rdb:           rdb,
		users:         user.NewPGRepo(pool),
		categories:    category.NewPGRepo(pool),
		products:      product.NewPGRepo(pool),
		orders:        orders,
		inventory:     inventory.NewPGRepo(pool),
		payments:      payments,
		paymentSvc:    payment.NewService(payments, orders, registry),
		settings:      settings.NewPGRepo(pool),
		notifications: notification.NewPGRepo(pool),
		dashboard:     dashboard.NewPGRepo(pool),
	}
	d.notifier = notification.NewNotifier(d.notifications)

	r := newRouter(d)
	log.Printf("shop-api listening on %s", cfg.Addr)
	log.Fatal(r.Run(cfg.Addr))
}
