// Package sqlstore keeps contracts, contract types and users in SQLite
// through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *gorm.DB
}

// Open connects to the database file at path
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// OpenAndMigrate opens the database at path and applies pending migrations
func OpenAndMigrate(ctx context.Context, path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return New(db), nil
}

func (s *Store) CreateContract(ctx context.Context, c *model.Contract) error {
	m, err := contractToModel(c)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var m ContractModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return contractFromModel(m)
}

func (s *Store) ListContracts(ctx context.Context, filter service.ContractFilter) ([]*model.Contract, error) {
	q := s.db.WithContext(ctx).Model(&ContractModel{})
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.LawyerID != "" {
		q = q.Where("lawyer_id = ?", filter.LawyerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	rows := make([]ContractModel, 0)
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*model.Contract, 0, len(rows))
	for _, m := range rows {
		c, err := contractFromModel(m)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// UpdateContract writes c only if the stored version still equals c.Version
func (s *Store) UpdateContract(ctx context.Context, c *model.Contract) error {
	data, err := contractData(c)
	if err != nil {
		return err
	}
	now := time.Now()

	res := s.db.WithContext(ctx).Model(&ContractModel{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"contract_type_id": c.ContractTypeID,
			"client_id":        c.ClientID,
			"lawyer_id":        c.LawyerID,
			"contract_data":    data,
			"signature":        c.Signature,
			"status":           string(c.Status),
			"document_url":     c.DocumentURL,
			"client_signed":    c.ClientSigned,
			"lawyer_signed":    c.LawyerSigned,
			"issue_date":       c.IssueDate,
			"expiry_date":      c.ExpiryDate,
			"rejection_reason": c.RejectionReason,
			"version":          c.Version + 1,
			"updated_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&ContractModel{}).Where("id = ?", c.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return service.ErrNotFound
		}
		return service.ErrConflict
	}

	c.Version++
	c.UpdatedAt = now
	return nil
}

func (s *Store) GetContractType(ctx context.Context, id string) (*model.ContractType, error) {
	var m ContractTypeModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return contractTypeFromModel(m)
}

func (s *Store) ListContractTypes(ctx context.Context) ([]*model.ContractType, error) {
	rows := make([]ContractTypeModel, 0)
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*model.ContractType, 0, len(rows))
	for _, m := range rows {
		ct, err := contractTypeFromModel(m)
		if err != nil {
			return nil, err
		}
		result = append(result, ct)
	}
	return result, nil
}

// ReplaceContractTypes swaps the whole catalogue in one transaction
func (s *Store) ReplaceContractTypes(ctx context.Context, types []*model.ContractType) error {
	rows := make([]ContractTypeModel, 0, len(types))
	for _, ct := range types {
		m, err := contractTypeToModel(ct)
		if err != nil {
			return err
		}
		rows = append(rows, m)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ContractTypeModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	m := userToModel(u)
	m.Email = strings.ToLower(m.Email)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var m UserModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return userFromModel(m), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var m UserModel
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return userFromModel(m), nil
}

func (s *Store) ListUsersByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	rows := make([]UserModel, 0)
	if err := s.db.WithContext(ctx).Where("role = ?", string(role)).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*model.User, 0, len(rows))
	for _, m := range rows {
		result = append(result, userFromModel(m))
	}
	return result, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return service.ErrDuplicate
	}
	return err
}
