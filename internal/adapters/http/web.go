package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"syndicway/internal/adapters/email"
	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/adapters/http/perf"
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
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	ResidenceStore    residenceStore.Store
	ResidentStore     residentStore.Store
	ApartmentStore    apartmentStore.Store
	PaymentStore      paymentStore.Store
	MessageStore      messageStore.Store
	AnnouncementStore announcementStore.Store
	NotificationStore notificationStore.Store
	SubscriptionStore subscriptionStore.Store
	OutboxStore       outboxStore.Store
}

// loadCSRFKey reads the CSRF secret from SYNDIC_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("SYNDIC_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("SYNDIC_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("SYNDIC_ENV") == "production" {
		log.Fatal("SYNDIC_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set SYNDIC_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("SYNDIC_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	csrfCfg := middleware.CSRFConfig{
		AuthKey:        loadCSRFKey(),
		Secure:         os.Getenv("SYNDIC_ENV") == "production",
		TrustedOrigins: trustedOrigins(),
	}

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfCfg),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}

// trustedOrigins returns the origins allowed to post forms. Deployments set
// SYNDIC_TRUSTED_ORIGINS (comma-separated); development falls back to the
// local listener.
func trustedOrigins() []string {
	if v := os.Getenv("SYNDIC_TRUSTED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		return origins
	}
	return []string{"localhost:8080", "127.0.0.1:8080"}
}
