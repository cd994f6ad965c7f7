package database

import (
	"context"

	"ipcatalog/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const deleteBatchSize = 500

var replacedColumns = []string{"asn", "prefix", "cc", "rir", "isp", "rdns", "score", "global"}

// Upsert inserts the record or, when its key already exists, replaces every
// other column with the new values in a single statement.
func (s *Store) Upsert(ctx context.Context, record domain.IPRecord) error {
	err := s.withContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip"}},
		DoUpdates: clause.AssignmentColumns(replacedColumns),
	}).Create(&record).Error
	return storeError("upsert "+record.IP, err)
}

// Delete removes every record whose key matches pattern and returns how many
// rows were removed. No match is not an error.
func (s *Store) Delete(ctx context.Context, pattern string) (int64, error) {
	matcher := CompilePattern(pattern)

	if matcher.Literal() {
		result := s.withContext(ctx).Where("ip = ?", pattern).Delete(&domain.IPRecord{})
		if result.Error != nil {
			return 0, storeError("delete "+pattern, result.Error)
		}
		return result.RowsAffected, nil
	}

	var removed int64
	err := s.withContext(ctx).Transaction(func(tx *gorm.DB) error {
		var keys []string
		if err := tx.Model(&domain.IPRecord{}).Pluck("ip", &keys).Error; err != nil {
			return err
		}

		matched := matcher.Filter(keys)
		for start := 0; start < len(matched); start += deleteBatchSize {
			end := min(start+deleteBatchSize, len(matched))
			result := tx.Where("ip IN ?", matched[start:end]).Delete(&domain.IPRecord{})
			if result.Error != nil {
				return result.Error
			}
			removed += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, storeError("delete "+pattern, err)
	}

	return removed, nil
}

// Query returns every record whose key matches pattern. Order is whatever
// the backend yields for a full scan.
func (s *Store) Query(ctx context.Context, pattern string) ([]domain.IPRecord, error) {
	matcher := CompilePattern(pattern)

	if matcher.Literal() {
		var records []domain.IPRecord
		if err := s.withContext(ctx).Where("ip = ?", pattern).Find(&records).Error; err != nil {
			return nil, storeError("query "+pattern, err)
		}
		return records, nil
	}

	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	matched := all[:0]
	for _, record := range all {
		if matcher.Match(record.IP) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (s *Store) All(ctx context.Context) ([]domain.IPRecord, error) {
	var records []domain.IPRecord
	if err := s.withContext(ctx).Find(&records).Error; err != nil {
		return nil, storeError("select all", err)
	}
	return records, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.withContext(ctx).Model(&domain.IPRecord{}).Count(&count).Error; err != nil {
		return 0, storeError("count", err)
	}
	return count, nil
}
