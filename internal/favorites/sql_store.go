package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealquest/backend/internal/identity"
	"github.com/pageza/mealquest/backend/internal/models"
)

// SQLStore keeps one favorite_sets row per (namespace, identity).
type SQLStore struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewSQLStore(db *gorm.DB, log logrus.FieldLogger) *SQLStore {
	return &SQLStore{db: db, log: log}
}

func (s *SQLStore) Load(ctx context.Context, key identity.StorageKey) []string {
	return loadSoft(ctx, s, s.log, key)
}

func (s *SQLStore) Fetch(ctx context.Context, key identity.StorageKey) ([]string, error) {
	var row models.FavoriteSet
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND identity = ?", key.Namespace, string(key.Identity)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query favorite set %s: %w", key, err)
	}
	return decodeIDs(row.Payload)
}

func (s *SQLStore) Save(ctx context.Context, key identity.StorageKey, ids []string) error {
	payload, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	row := models.FavoriteSet{
		Namespace: key.Namespace,
		Identity:  string(key.Identity),
		Payload:   payload,
		UpdatedAt: time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert favorite set %s: %w", key, err)
	}
	return nil
}
