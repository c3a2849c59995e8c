package models

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const listRecentQuery = `SELECT id, original_filename, original_path, mask_filename, mask_path,
	upload_date, file_size, image_width, image_height
	FROM image_pairs
	ORDER BY upload_date DESC, id DESC
	LIMIT ?`

// Store Record store for image pairs. Safe for concurrent use.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Insert Insert one image pair and return its id.
// Size and dimensions are taken from the original only.
func (s *Store) Insert(ctx context.Context, original FileInfo, mask FileInfo) (uint, error) {
	pair := ImagePair{
		OriginalFilename: original.Filename,
		OriginalPath:     original.Path,
		MaskFilename:     mask.Filename,
		MaskPath:         mask.Path,
		FileSize:         original.FileSize,
		ImageWidth:       original.Width,
		ImageHeight:      original.Height,
	}
	if err := s.db.WithContext(ctx).Create(&pair).Error; err != nil {
		return 0, fmt.Errorf("insert image pair: %w", err)
	}
	return pair.ID, nil
}

// ListRecent Return up to limit image pairs, most recent first.
// Pairs uploaded at the same instant are ordered by id, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]ImagePair, error) {
	pairs := make([]ImagePair, 0)
	if limit <= 0 {
		return pairs, nil
	}
	if err := s.db.WithContext(ctx).Raw(listRecentQuery, limit).Scan(&pairs).Error; err != nil {
		return nil, fmt.Errorf("list recent image pairs: %w", err)
	}
	return pairs, nil
}

// Count Number of stored image pairs
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ImagePair{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count image pairs: %w", err)
	}
	return count, nil
}

// Ping Check that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
