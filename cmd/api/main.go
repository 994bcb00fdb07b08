package main

import (
	"context"
	"log"
	"time"

	"order-dashboard/internal/core/config"
	"order-dashboard/internal/core/events"
	"order-dashboard/internal/core/kv"
	"order-dashboard/internal/core/logger"
	"order-dashboard/internal/core/metrics"
	"order-dashboard/internal/core/server"
	courieradapter "order-dashboard/internal/features/couriers/adapters"
	courierhandler "order-dashboard/internal/features/couriers/handler"
	courierports "order-dashboard/internal/features/couriers/ports"
	courierservice "order-dashboard/internal/features/couriers/service"
	orderadapter "order-dashboard/internal/features/orders/adapters"
	orderdomain "order-dashboard/internal/features/orders/domain"
	orderhandler "order-dashboard/internal/features/orders/handler"
	orderservice "order-dashboard/internal/features/orders/service"
	settingsdomain "order-dashboard/internal/features/settings/domain"
	settingshandler "order-dashboard/internal/features/settings/handler"
	settingsservice "order-dashboard/internal/features/settings/service"

	"go.uber.org/zap"
)

// @title Order Dashboard API
// @version 1.0
// @description REST gateway for a WooCommerce order dashboard with courier booking.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("settings_backend", cfg.Settings.Backend),
	)

	if err := orderdomain.ValidateStatusMappings(); err != nil {
		l.Fatal("Status mapping tables are inconsistent", zap.Error(err))
	}

	metrics.RegisterDefault()

	store, err := openSettingsStore(cfg)
	if err != nil {
		l.Fatal("Failed to open the settings store", zap.Error(err))
	}
	defer store.Close()

	settingsSvc := settingsservice.NewSettingsService(store)
	if err := seedCredentials(settingsSvc, cfg); err != nil {
		l.Fatal("Failed to seed credentials", zap.Error(err))
	}

	// Order gateway and courier providers all read credentials live from the
	// settings service, so saving new keys takes effect without a restart.
	wcAdapter := orderadapter.NewWooCommerceAdapter(settingsSvc)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := wcAdapter.HealthCheck(ctx); err != nil {
		// Not fatal: credentials may simply not be entered yet.
		l.Warn("WooCommerce connection not verified", zap.Error(err))
	} else {
		l.Info("WooCommerce connection verified")
	}
	cancel()

	courierProviders := []courierports.CourierProvider{
		courieradapter.NewSteadfastAdapter(cfg.Couriers.SteadfastURL, settingsSvc, cfg.Couriers.RequestsPerMinute),
		courieradapter.NewPathaoAdapter(cfg.Couriers.PathaoURL, settingsSvc, cfg.Couriers.RequestsPerMinute),
	}
	courierSvc := courierservice.NewCourierService(courierProviders)

	broker := events.NewBroker()
	lifecycleSvc := orderservice.NewLifecycleService(wcAdapter, settingsSvc, courierSvc, broker)

	orderHdl := orderhandler.NewOrderHandler(lifecycleSvc)
	courierHdl := courierhandler.NewCourierHandler(courierSvc, lifecycleSvc)
	settingsHdl := settingshandler.NewSettingsHandler(settingsSvc)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/orders", orderHdl.ListOrders)
	srv.App.Get("/orders/:id", orderHdl.GetOrder)
	srv.App.Patch("/orders/:id/status", orderHdl.UpdateStatus)
	srv.App.Post("/orders/:id/book", orderHdl.BookOrder)
	srv.App.Get("/customers/history", courierHdl.CustomerHistory)
	srv.App.Get("/settings", settingsHdl.GetSettings)
	srv.App.Put("/settings", settingsHdl.PutSettings)
	srv.App.Delete("/settings", settingsHdl.DeleteSettings)
	srv.App.Get("/events", events.SSEHandler(broker))

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

// openSettingsStore builds the credential store the configuration asks for.
func openSettingsStore(cfg *config.AppConfig) (kv.Store, error) {
	switch cfg.Settings.Backend {
	case "redis":
		return kv.NewRedisStore(cfg.Settings.RedisURL, "settings")
	case "pebble":
		return kv.NewPebbleStore(cfg.Settings.PebblePath)
	default:
		return kv.NewMemoryStore(), nil
	}
}

// seedCredentials copies configured credentials into the store, but only when
// the store holds nothing yet. Credentials saved through the API always win.
func seedCredentials(settings *settingsservice.SettingsService, cfg *config.AppConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := settings.StoreCredentials(ctx)
	if err != nil {
		return err
	}
	if store == (settingsdomain.StoreCredentials{}) && cfg.WooCommerce.URL != "" {
		err := settings.SaveStoreCredentials(ctx, settingsdomain.StoreCredentials{
			SiteURL:        cfg.WooCommerce.URL,
			ConsumerKey:    cfg.WooCommerce.ConsumerKey,
			ConsumerSecret: cfg.WooCommerce.ConsumerSecret,
		})
		if err != nil {
			return err
		}
	}

	couriers, err := settings.CourierCredentials(ctx)
	if err != nil {
		return err
	}
	if couriers == (settingsdomain.CourierCredentials{}) {
		seeded := settingsdomain.CourierCredentials{
			Steadfast: settingsdomain.SteadfastCredentials{
				APIKey:    cfg.Couriers.SteadfastAPIKey,
				SecretKey: cfg.Couriers.SteadfastSecretKey,
			},
			Pathao: settingsdomain.PathaoCredentials{
				AccessToken: cfg.Couriers.PathaoAccessToken,
				StoreID:     cfg.Couriers.PathaoStoreID,
			},
		}
		if seeded != (settingsdomain.CourierCredentials{}) {
			return settings.SaveCourierCredentials(ctx, seeded)
		}
	}
	return nil
}
