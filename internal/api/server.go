package api

import (
	"serwer-obrazow/internal/config"
	"serwer-obrazow/internal/database"
	"serwer-obrazow/internal/images"
)

type Server struct {
	config  *config.Config
	store   *database.Store
	service *images.Service
}

func NewServer(cfg *config.Config, store *database.Store, service *images.Service) *Server {
	return &Server{
		config:  cfg,
		store:   store,
		service: service,
	}
}
