package repository

import (
	"errors"
	"fmt"

	"Blockbuster/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReaderRepository defines data operations for NFC reader registrations.
type ReaderRepository interface {
	UpsertReader(reader *model.Reader) error
	GetReaderByDeviceID(deviceID string) (*model.Reader, error)
	GetAllReaders() ([]*model.Reader, error)
	DeleteReader(deviceID string) error
}

// gormReaderRepository implements ReaderRepository on GORM.
type gormReaderRepository struct {
	db *gorm.DB
}

// NewGormReaderRepository creates a new instance of gormReaderRepository.
func NewGormReaderRepository(db *gorm.DB) ReaderRepository {
	return &gormReaderRepository{db: db}
}

// UpsertReader creates or updates a reader registration.
func (r *gormReaderRepository) UpsertReader(reader *model.Reader) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "roku_addr", "updated_at"}),
	}).Create(reader).Error
	if err != nil {
		return fmt.Errorf("failed to upsert reader %s: %w", reader.DeviceID, err)
	}
	return nil
}

// GetReaderByDeviceID retrieves a reader. Missing readers return (nil, nil).
func (r *gormReaderRepository) GetReaderByDeviceID(deviceID string) (*model.Reader, error) {
	var reader model.Reader
	err := r.db.First(&reader, "device_id = ?", deviceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query reader %s: %w", deviceID, err)
	}
	return &reader, nil
}

// GetAllReaders lists every registered reader.
func (r *gormReaderRepository) GetAllReaders() ([]*model.Reader, error) {
	var readers []*model.Reader
	if err := r.db.Order("device_id").Find(&readers).Error; err != nil {
		return nil, fmt.Errorf("failed to list readers: %w", err)
	}
	return readers, nil
}

// DeleteReader removes a reader registration.
func (r *gormReaderRepository) DeleteReader(deviceID string) error {
	res := r.db.Delete(&model.Reader{}, "device_id = ?", deviceID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete reader %s: %w", deviceID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
