package repositories

import (
	"fmt"

	"agent-hub/db"
	"agent-hub/entities"
)

const archiveBatchSize = 500

type metricsArchivePgRepository struct {
	db db.Database
}

func NewMetricsArchivePgRepository(database db.Database) MetricsArchiveRepository {
	return &metricsArchivePgRepository{db: database}
}

func (r *metricsArchivePgRepository) SaveBatch(records []entities.MetricsRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.GetDB().CreateInBatches(&records, archiveBatchSize).Error; err != nil {
		return fmt.Errorf("archive %d metrics records: %w", len(records), err)
	}
	return nil
}
