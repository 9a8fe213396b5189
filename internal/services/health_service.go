package services

import (
	"context"
	"time"

	"tabprep/pkg/contracts"
	"tabprep/pkg/contracts/api/v1"
)

// HealthService reports liveness of the viewer
type HealthService struct {
	table     *TableService
	startTime time.Time
}

// NewHealthService creates a health service for the given table
func NewHealthService(table *TableService) *HealthService {
	return &HealthService{table: table, startTime: time.Now()}
}

// HealthCheck returns the viewer status
func (s *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:  "ok",
		Version: contracts.Version,
		File:    s.table.File(),
	}
}

// Uptime returns how long the service has been running
func (s *HealthService) Uptime() time.Duration {
	return time.Since(s.startTime)
}
