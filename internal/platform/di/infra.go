// internal/platform/di/infra.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "agrimart/internal/infra/config"
	"agrimart/internal/infra/database"
)

// Infra is the shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/SecretManager/Postgres)
// - owns env/config-resolved runtime settings
//
// Strictness split:
// - Firestore is strict (the catalog is required to hydrate carts).
// - FirebaseAuth, SecretManager and Postgres are best-effort (warn +
//   continue): without auth every caller is a guest, and without
//   Postgres remote cart operations degrade to the local store, which is
//   exactly the reconciliation engine's fallback policy.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestore.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	DB            *database.DB
}

func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di.infra: config is nil")
	}

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		return nil, errors.New("di.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di.infra] Using credentials file for GCP clients")
	} else {
		log.Printf("[di.infra] Using Application Default Credentials")
	}

	// 1) Strict: Firestore (catalog reads)
	fsClient, err := firestore.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("di.infra: firestore init failed: %w", err)
	}
	inf.Firestore = fsClient
	log.Printf("[di.infra] Firestore client initialized project=%s", projectID)

	// 2) Best-effort: Secret Manager (DB password resolution)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: Secret Manager init failed (continuing): %v", err)
		} else {
			inf.SecretManager = sm
		}
	}

	// 3) Best-effort: Firebase Auth (identity verification)
	{
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: Firebase app init failed (guest-only mode): %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[di.infra] WARN: Firebase auth init failed (guest-only mode): %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[di.infra] Firebase auth initialized project=%s", cfg.FirebaseProjectID)
			}
		}
	}

	// 4) Best-effort: Postgres (remote cart store)
	{
		password := cfg.DBPassword
		if secretName := strings.TrimSpace(cfg.DBPasswordSecret); secretName != "" {
			p, err := inf.accessSecret(ctx, secretName)
			if err != nil {
				log.Printf("[di.infra] WARN: DB password secret access failed (falling back to DB_PASSWORD): %v", err)
			} else {
				password = p
			}
		}

		db, err := database.NewConnection(database.Config{
			Host:            cfg.DBHost,
			Port:            cfg.DBPort,
			User:            cfg.DBUser,
			Password:        password,
			Name:            cfg.DBName,
			SSLMode:         cfg.DBSSLMode,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			log.Printf("[di.infra] WARN: Postgres init failed (cart runs on local stores only): %v", err)
		} else {
			inf.DB = db
		}
	}

	return inf, nil
}

func (inf *Infra) accessSecret(ctx context.Context, name string) (string, error) {
	if inf == nil || inf.SecretManager == nil {
		return "", errors.New("di.infra: secret manager client is nil")
	}
	resp, err := inf.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: strings.TrimSpace(name),
	})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("di.infra: empty secret payload")
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// Close releases owned clients. Safe on a partially initialized Infra.
func (inf *Infra) Close() {
	if inf == nil {
		return
	}
	if inf.DB != nil {
		if err := inf.DB.Close(); err != nil {
			log.Printf("[di.infra] WARN: DB close: %v", err)
		}
	}
	if inf.SecretManager != nil {
		if err := inf.SecretManager.Close(); err != nil {
			log.Printf("[di.infra] WARN: secret manager close: %v", err)
		}
	}
	if inf.Firestore != nil {
		if err := inf.Firestore.Close(); err != nil {
			log.Printf("[di.infra] WARN: firestore close: %v", err)
		}
	}
}
