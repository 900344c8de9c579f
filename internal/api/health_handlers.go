package api

import (
	"encoding/json"
	"net/http"
)

// @Summary      Health check
// @Description  Reports whether the service and its database are reachable.
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {string}  string "Database unreachable"
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.GetPool().Ping(r.Context()); err != nil {
		http.Error(w, "Database unreachable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
