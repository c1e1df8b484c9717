package postgres

import (
	"errors"

	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"gorm.io/gorm"
)

// archiveBatchSize bounds each multi-row insert into an archive table.
const archiveBatchSize = 200

func notFound(err error, what error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return what
	}
	return err
}

func applyPagination(query *gorm.DB, filters repositories.AuditLogFilters) *gorm.DB {
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
