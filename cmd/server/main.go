package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "syndicway/internal/adapters/email"
	web "syndicway/internal/adapters/http"
	"syndicway/internal/adapters/http/perf"
	"syndicway/internal/adapters/storage"
	accountStore "syndicway/internal/adapters/storage/account"
	announcementStore "syndicway/internal/adapters/storage/announcement"
	apartmentStore "syndicway/internal/adapters/storage/apartment"
	messageStore "syndicway/internal/adapters/storage/message"
	notificationStore "syndicway/internal/adapters/storage/notification"
	outboxStore "syndicway/internal/adapters/storage/outbox"
	paymentStore "syndicway/internal/adapters/storage/payment"
	residenceStore "syndicway/internal/adapters/storage/residence"
	residentStore "syndicway/internal/adapters/storage/resident"
	subscriptionStore "syndicway/internal/adapters/storage/subscription"
	"syndicway/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// WAL mode, foreign keys and a busy timeout keep concurrent request
	// handling sane on a single SQLite file.
	dbPath := envOrDefault("SYNDIC_DB", "syndicway.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	subStore := subscriptionStore.NewSQLiteStore(timedDB)
	resStore := residenceStore.NewSQLiteStore(timedDB)
	aptStore := apartmentStore.NewSQLiteStore(timedDB)
	rsdStore := residentStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:      acctStore,
		ResidenceStore:    resStore,
		ResidentStore:     rsdStore,
		ApartmentStore:    aptStore,
		PaymentStore:      paymentStore.NewSQLiteStore(timedDB),
		MessageStore:      messageStore.NewSQLiteStore(timedDB),
		AnnouncementStore: announcementStore.NewSQLiteStore(timedDB),
		NotificationStore: notificationStore.NewSQLiteStore(timedDB),
		SubscriptionStore: subStore,
		OutboxStore:       outboxStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	seedDeps := orchestrators.SeedDeps{
		AccountStore:      acctStore,
		SubscriptionStore: subStore,
		ResidenceStore:    resStore,
		ApartmentStore:    aptStore,
		ResidentStore:     rsdStore,
		GenerateID:        func() string { return uuid.New().String() },
		Now:               time.Now,
	}

	adminEmail := envOrDefault("SYNDIC_ADMIN_EMAIL", "admin@syndicway.app")
	adminPassword := envOrDefault("SYNDIC_ADMIN_PASSWORD", "ChangeMeQuickly1")
	if err := orchestrators.ExecuteSeedAdmin(ctx, adminEmail, adminPassword, seedDeps); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if err := orchestrators.ExecuteSeedPlans(ctx, seedDeps); err != nil {
		log.Fatalf("failed to seed plans: %v", err)
	}

	// Demo residence with residents for development only
	if os.Getenv("SYNDIC_ENV") != "production" {
		if err := orchestrators.ExecuteSeedDemo(ctx, seedDeps); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		log.Println("Demo seed data loaded (dev mode)")
	}

	// Configure email sender
	resendKey := os.Getenv("SYNDIC_RESEND_KEY")
	emailFrom := envOrDefault("SYNDIC_RESEND_FROM", "Syndic Way <noreply@syndicway.app>")
	emailReplyTo := os.Getenv("SYNDIC_RESEND_REPLY_TO")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom, emailReplyTo)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("SYNDIC_ENV") == "production" {
			log.Println("WARNING: SYNDIC_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set SYNDIC_RESEND_KEY for real delivery)")
		}
	}
	web.SetEmailSender(sender)

	// Background worker retries queued credential and receipt emails
	retryDeps := orchestrators.OutboxRetryDeps{
		OutboxStore: stores.OutboxStore,
		EmailSender: sender,
	}
	stopRetry := orchestrators.StartOutboxRetryScheduler(ctx, retryDeps, orchestrators.DefaultOutboxRetryConfig())
	defer stopRetry()

	mux := web.NewMux("static", stores, collector)

	addr := envOrDefault("SYNDIC_ADDR", ":8080")
	log.Printf("Syndic Way %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("SYNDIC_ENV", "development"), storage.LatestSchemaVersion())

	server := &http.Server{Addr: addr, Handler: mux}

	// SIGINT/SIGTERM drain in-flight requests before the process exits.
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case <-shutdownCtx.Done():
		log.Println("Shutdown signal received, draining requests")
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			log.Printf("Shutdown incomplete: %v", err)
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
