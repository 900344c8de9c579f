package api

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"serwer-obrazow/internal/auth"
	"serwer-obrazow/internal/config"
	"serwer-obrazow/internal/database"
	"serwer-obrazow/internal/images"
	"serwer-obrazow/internal/models"
	"serwer-obrazow/internal/storage"
	"serwer-obrazow/internal/thumbnailer"
	"serwer-obrazow/internal/token"
)

var testServer *Server
var testUserToken string
var testUserClaims *auth.AppClaims
var testAdminToken string
var testAdminClaims *auth.AppClaims
var testNoTierClaims *auth.AppClaims

func seedTestUser(ctx context.Context, pool *pgxpool.Pool, secret, username string, isAdmin bool) (string, *auth.AppClaims) {
	hashedPassword, _ := auth.HashPassword("password")
	var userID int64
	err := pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, is_admin) VALUES ($1, $2, $3) RETURNING id`,
		username, hashedPassword, isAdmin,
	).Scan(&userID)
	if err != nil {
		log.Fatalf("Could not seed user %s: %s", username, err)
	}

	user := &models.User{ID: userID, Username: username, IsAdmin: isAdmin}
	jwtToken, err := auth.GenerateJWT(user, secret)
	if err != nil {
		log.Fatalf("Could not generate token: %s", err)
	}
	claims, err := auth.VerifyJWT(jwtToken, secret)
	if err != nil {
		log.Fatalf("Could not verify token: %s", err)
	}
	return jwtToken, claims
}

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:14-alpine",
		postgres.WithDatabase("test_api_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		log.Fatalf("Could not start postgres: %s", err)
	}
	defer pgContainer.Terminate(ctx)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Could not get connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	schema, err := os.ReadFile("../../db/init.sql")
	if err != nil {
		log.Fatalf("Could not read schema file: %s", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Could not apply schema: %s", err)
	}

	tempDir, err := os.MkdirTemp("", "api-storage-test")
	if err != nil {
		log.Fatalf("Could not create temp dir: %s", err)
	}
	defer os.RemoveAll(tempDir)

	localStorage, err := storage.NewLocalStorage(tempDir)
	if err != nil {
		log.Fatalf("Could not create local storage: %s", err)
	}

	newToken, err := token.NewGenerator()
	if err != nil {
		log.Fatalf("Could not create token generator: %s", err)
	}

	store := database.NewStore(pool)
	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "api_test_secret"},
		Upload:  config.UploadConfig{MaxBytes: 20 << 20, MaxPixels: 40_000_000, Workers: 2},
		AppHost: "http://localhost:8080",
	}
	deriver := thumbnailer.NewDeriver(cfg.Upload.MaxPixels)
	service := images.NewService(store, localStorage, deriver, newToken, cfg.AppHost, cfg.Upload.Workers)
	testServer = NewServer(cfg, store, service)

	testUserToken, testUserClaims = seedTestUser(ctx, pool, cfg.JWT.Secret, "api_test_user", false)
	testAdminToken, testAdminClaims = seedTestUser(ctx, pool, cfg.JWT.Secret, "api_test_admin", true)
	_, testNoTierClaims = seedTestUser(ctx, pool, cfg.JWT.Secret, "api_test_no_tier", false)

	// Zwykły użytkownik dostaje plan Premium (oryginał + wygasające linki)
	var premiumID int64
	if err := pool.QueryRow(ctx, `SELECT id FROM account_tiers WHERE name = 'Premium'`).Scan(&premiumID); err != nil {
		log.Fatalf("Could not find Premium tier: %s", err)
	}
	if err := store.SetUserTier(ctx, testUserClaims.UserID, premiumID); err != nil {
		log.Fatalf("Could not bind tier: %s", err)
	}

	os.Exit(m.Run())
}
