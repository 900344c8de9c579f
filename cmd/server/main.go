// @title           Image Hosting API
// @version         1.0
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"

	"serwer-obrazow/internal/api"
	"serwer-obrazow/internal/config"
	"serwer-obrazow/internal/database"
	"serwer-obrazow/internal/images"
	"serwer-obrazow/internal/storage"
	"serwer-obrazow/internal/thumbnailer"
	"serwer-obrazow/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "serwer-obrazow/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Nie można wczytać konfiguracji: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Nie można połączyć się z bazą danych: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Nie można pingować bazy danych: %v", err)
	}
	log.Println("Pomyślnie połączono z bazą danych")

	var blobs storage.BlobStore
	switch cfg.Storage.Backend {
	case "minio":
		blobs, err = storage.NewMinioStorage(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
		if err != nil {
			log.Fatalf("Nie można zainicjować minio storage: %v", err)
		}
		log.Printf("Obrazy będą przechowywane w buckecie: %s", cfg.Storage.Bucket)
	default:
		blobs, err = storage.NewLocalStorage(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Nie można zainicjować local storage: %v", err)
		}
		log.Printf("Obrazy będą przechowywane w: %s", cfg.Storage.Path)
	}

	newToken, err := token.NewGenerator()
	if err != nil {
		log.Fatalf("Nie można zainicjować generatora tokenów: %v", err)
	}

	deriver := thumbnailer.NewDeriver(cfg.Upload.MaxPixels)

	store := database.NewStore(dbpool)
	service := images.NewService(store, blobs, deriver, newToken, cfg.AppHost, cfg.Upload.Workers)
	server := api.NewServer(cfg, store, service)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(api.MetricsMiddleware)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Serwer obrazów działa! Dokumentacja dostępna pod /swagger/index.html"))
	})

	r.Post("/api/v1/auth/login", server.LoginHandler)
	r.Post("/api/v1/auth/refresh", server.RefreshTokenHandler)

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)
		r.Post("/upload", server.UploadImageHandler)
		r.Get("/image/{token}", server.RetrieveImageHandler)
		r.Get("/thumbnail/{token}", server.RetrieveThumbnailHandler)
		r.Get("/user-images", server.ListUserImagesHandler)
		r.Get("/account-tiers", server.ListTiersHandler)
		r.Post("/account-tiers", server.CreateTierHandler)
	})

	log.Println("Uruchamianie serwera na porcie :8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}
