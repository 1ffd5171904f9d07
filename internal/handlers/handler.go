package handlers

import (
	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger         *logging.Logger
	clusterService *services.ClusterService
}

// New creates a new handler instance
func New(logger *logging.Logger, clusterService *services.ClusterService) *Handler {
	return &Handler{
		logger:         logger,
		clusterService: clusterService,
	}
}
