package main

import (
	"context"
	"os/signal"
	"syscall"

	auctionapp "github.com/cristianortiz/harvestBid/internal/auction/application"
	auctiondomain "github.com/cristianortiz/harvestBid/internal/auction/domain"
	auctionhttp "github.com/cristianortiz/harvestBid/internal/auction/infra/http"
	auctionpg "github.com/cristianortiz/harvestBid/internal/auction/infra/repository/postgres"
	auctionsqlite "github.com/cristianortiz/harvestBid/internal/auction/infra/repository/sqlite"
	auctionws "github.com/cristianortiz/harvestBid/internal/auction/infra/websocket"
	dashboardapp "github.com/cristianortiz/harvestBid/internal/dashboard/application"
	dashboardhttp "github.com/cristianortiz/harvestBid/internal/dashboard/infra/http"
	notificationapp "github.com/cristianortiz/harvestBid/internal/notification/application"
	notificationdomain "github.com/cristianortiz/harvestBid/internal/notification/domain"
	notificationhttp "github.com/cristianortiz/harvestBid/internal/notification/infra/http"
	notificationpg "github.com/cristianortiz/harvestBid/internal/notification/infra/repository/postgres"
	notificationsqlite "github.com/cristianortiz/harvestBid/internal/notification/infra/repository/sqlite"
	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/cristianortiz/harvestBid/internal/shared/config"
	"github.com/cristianortiz/harvestBid/internal/shared/db"
	"github.com/cristianortiz/harvestBid/internal/shared/db/migrations"
	"github.com/cristianortiz/harvestBid/internal/shared/httpserver"
	"github.com/cristianortiz/harvestBid/internal/shared/lock"
	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/cristianortiz/harvestBid/internal/shared/metrics"
	sharedws "github.com/cristianortiz/harvestBid/internal/shared/websocket"
	userapp "github.com/cristianortiz/harvestBid/internal/user/application"
	userdomain "github.com/cristianortiz/harvestBid/internal/user/domain"
	userhttp "github.com/cristianortiz/harvestBid/internal/user/infra/http"
	userpg "github.com/cristianortiz/harvestBid/internal/user/infra/repository/postgres"
	usersqlite "github.com/cristianortiz/harvestBid/internal/user/infra/repository/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// stores groups the repositories of one backend.
type stores struct {
	auctions      auctiondomain.AuctionRepository
	bids          auctiondomain.BidRepository
	users         userdomain.UserRepository
	notifications notificationdomain.NotificationRepository
	close         func()
}

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	logger.SetLevel(cfg.LogLevel)
	log.Info("starting harvestBid server",
		zap.String("store", cfg.StoreDriver),
		zap.String("lock_backend", cfg.LockBackend),
		zap.String("close_policy", cfg.ClosePolicy),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal("storage setup failed", zap.Error(err))
	}
	defer st.close()

	locker, err := newLocker(ctx, cfg)
	if err != nil {
		log.Fatal("lock backend setup failed", zap.Error(err))
	}

	policy, err := auctiondomain.ParseClosePolicy(cfg.ClosePolicy)
	if err != nil {
		log.Fatal("invalid close policy", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auctionMetrics := metrics.New(registry)

	clk := clock.Real()
	lifecycle := auctiondomain.NewLifecycle(clk, policy)
	hub := sharedws.NewHub()

	userService := userapp.NewService(st.users, clk)
	dispatcher := notificationapp.NewDispatcher(st.notifications, clk, auctionMetrics)
	deps := auctionapp.Deps{
		Auctions:    st.auctions,
		Bids:        st.bids,
		Users:       userService,
		Lifecycle:   lifecycle,
		Validator:   auctiondomain.NewBidValidator(lifecycle),
		Locker:      locker,
		Notifier:    dispatcher,
		Broadcaster: auctionws.NewHubBroadcaster(hub),
		Metrics:     auctionMetrics,
	}
	auctionService := auctionapp.NewAuctionService(deps)
	dashboardService := dashboardapp.NewService(auctionapp.NewSnapshotReader(deps), st.bids, userService, cfg.RecommendationLimit)
	inbox := notificationapp.NewService(st.notifications, clk)

	sweeper := auctionapp.NewSweeper(deps, cfg.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		log.Fatal("sweeper schedule rejected", zap.Error(err))
	}
	defer func() { <-sweeper.Stop().Done() }()

	wsHandler := auctionws.NewAuctionWSHandler(auctionService, hub)
	go hub.Run(ctx)
	go wsHandler.ListenForMessages(ctx)

	server := httpserver.NewServer(registry,
		auctionhttp.NewAuctionHandler(auctionService),
		userhttp.NewUserHandler(userService),
		notificationhttp.NewNotificationHandler(inbox),
		dashboardhttp.NewDashboardHandler(dashboardService),
		wsHandler,
	)
	if err := server.Start(cfg.HTTPAddr); err != nil {
		log.Error("HTTP server failed", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == "sqlite" {
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		for _, migrate := range []func() error{
			func() error { return usersqlite.AutoMigrate(gdb) },
			func() error { return auctionsqlite.AutoMigrate(gdb) },
			func() error { return notificationsqlite.AutoMigrate(gdb) },
		} {
			if err := migrate(); err != nil {
				return nil, err
			}
		}
		return &stores{
			auctions:      auctionsqlite.NewAuctionRepository(gdb),
			bids:          auctionsqlite.NewBidRepository(gdb),
			users:         usersqlite.NewUserRepository(gdb),
			notifications: notificationsqlite.NewNotificationRepository(gdb),
			close: func() {
				if sqlDB, err := gdb.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := migrations.Run(cfg.PostgresDSN()); err != nil {
			return nil, err
		}
	}
	pool, err := db.OpenPostgres(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	return &stores{
		auctions:      auctionpg.NewAuctionRepository(pool),
		bids:          auctionpg.NewBidRepository(pool),
		users:         userpg.NewUserRepository(pool),
		notifications: notificationpg.NewNotificationRepository(pool),
		close:         pool.Close,
	}, nil
}

func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, error) {
	if cfg.LockBackend != "redis" {
		return lock.NewMemoryLocker().WithWaitTimeout(cfg.LockWaitTimeout), nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	return lock.NewRedisLocker(client, cfg.LockTTL, cfg.LockWaitTimeout), nil
}
