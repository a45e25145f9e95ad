package confirmedstore

import (
	"context"

	"github.com/fystack/address-intake/pkg/infra"
	"github.com/fystack/address-intake/pkg/model"
	"github.com/fystack/address-intake/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postgresStore struct {
	db   *gorm.DB
	repo repository.Repository[model.ConfirmedAddress]
}

// NewPostgresStore persists confirmations in the confirmed_addresses table.
// The unique address index plus ON CONFLICT DO NOTHING makes concurrent
// duplicate submissions converge without errors or locks.
func NewPostgresStore(db *gorm.DB) Store {
	return &postgresStore{
		db:   db,
		repo: repository.NewRepository[model.ConfirmedAddress](db),
	}
}

func (s *postgresStore) Insert(ctx context.Context, address string) (bool, error) {
	record := model.ConfirmedAddress{Address: address}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoNothing: true,
		}).
		Create(&record)
	if res.Error != nil {
		return false, res.Error
	}

	// RowsAffected == 0 means the address was already present.
	return res.RowsAffected > 0, nil
}

func (s *postgresStore) Contains(ctx context.Context, address string) (bool, error) {
	count, err := s.repo.Count(ctx, repository.FindOptions{
		Where: repository.WhereType{"address": address},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *postgresStore) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, repository.FindOptions{})
}

func (s *postgresStore) Close() error {
	return infra.CloseDB(s.db)
}
