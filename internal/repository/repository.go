package repository

import (
	"context"

	"irisdash/internal/domain"
)

// Repository defines the interface for dashboard data access
type Repository interface {
	// Interaction history
	RecordInteraction(ctx context.Context, in *domain.Interaction) error
	ListInteractions(ctx context.Context, limit int) ([]domain.Interaction, error)
	CountInteractions(ctx context.Context) (int64, error)
	PruneInteractions(ctx context.Context, keep int) (int64, error)

	// Dataset metadata
	SaveDatasetInfo(ctx context.Context, info domain.DatasetInfo) error
	GetDatasetInfo(ctx context.Context) (*domain.DatasetInfo, error)

	// Close releases resources
	Close() error
}
