// internal/platform/di/container.go
package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"agrimart/internal/adapters/in/http/middleware"
	"agrimart/internal/adapters/in/http/storefront"
	storefrontHandler "agrimart/internal/adapters/in/http/storefront/handler"
	fsadapter "agrimart/internal/adapters/out/firestore"
	"agrimart/internal/adapters/out/gcs"
	"agrimart/internal/adapters/out/localstore"
	"agrimart/internal/adapters/out/notify"
	pgadapter "agrimart/internal/adapters/out/postgres"
	usecase "agrimart/internal/application/usecase"
	cartdom "agrimart/internal/domain/cart"
)

// Container wires infra into the cart service and exposes the router.
type Container struct {
	Infra    *Infra
	Registry *usecase.CartSessionRegistry
	Router   http.Handler
}

func NewContainer(ctx context.Context) (*Container, error) {
	inf, err := NewInfra(ctx)
	if err != nil {
		return nil, err
	}

	c, err := buildContainer(inf)
	if err != nil {
		inf.Close()
		return nil, err
	}
	return c, nil
}

func buildContainer(inf *Infra) (*Container, error) {
	if inf == nil || inf.Config == nil {
		return nil, errors.New("di.container: infra is nil")
	}
	cfg := inf.Config

	// ── out adapters ──────────────────────────────────────────
	catalogReader := fsadapter.NewCatalogReaderFS(inf.Firestore)
	imageResolver := gcs.NewProductImageResolver(cfg.ProductImageBucket)

	var dbClient *sql.DB
	if inf.DB != nil {
		dbClient = inf.DB.Client
		if err := pgadapter.EnsureSchema(context.Background(), dbClient); err != nil {
			log.Printf("[di.container] WARN: cart schema ensure failed: %v", err)
		}
	}
	remoteStore := pgadapter.NewCartRepositoryPG(dbClient, catalogReader, imageResolver)

	// notification sinks: process log always, ops mail when configured
	var notifier usecase.Notifier = notify.NewLogNotifier()
	if cfg.SendGridAPIKey != "" && cfg.AlertFromEmail != "" && cfg.AlertToEmail != "" {
		notifier = notify.NewMultiNotifier(
			notify.NewLogNotifier(),
			notify.NewSendGridAlertNotifier(cfg.SendGridAPIKey, cfg.AlertFromEmail, cfg.AlertToEmail),
		)
		log.Printf("[di.container] SendGrid cart alerts enabled to=%s", cfg.AlertToEmail)
	}

	// ── local store opener (one SQLite file per device) ───────
	localDir := strings.TrimSpace(cfg.LocalCartDir)
	if localDir == "" {
		localDir = "./data/carts"
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("di.container: local cart dir: %w", err)
	}
	openLocal := func(deviceID string) (cartdom.LocalStore, error) {
		return localstore.Open(filepath.Join(localDir, deviceID+".db"))
	}

	// ── application ───────────────────────────────────────────
	registry := usecase.NewCartSessionRegistryWithTimeout(openLocal, remoteStore, notifier, cfg.CartRemoteTimeout)

	// ── in adapters ───────────────────────────────────────────
	storeMux := http.NewServeMux()
	storefront.Register(storeMux, storefront.Deps{
		Cart: storefrontHandler.NewCartHandler(registry),
	})

	session := &middleware.Session{FirebaseAuth: inf.FirebaseAuth}

	// healthz stays outside the session chain (no device id required)
	root := http.NewServeMux()
	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	root.Handle("/store/", session.Handler(storeMux))

	router := middleware.CORS(middleware.Recover(root))

	return &Container{
		Infra:    inf,
		Registry: registry,
		Router:   router,
	}, nil
}

// Close releases everything the container owns.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Infra != nil {
		c.Infra.Close()
	}
}
