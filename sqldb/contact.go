package sqldb

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"contactbook/contact"
)

// ContactModel represents the database model for contacts
type ContactModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"column:nombre;not null"`
	Email string `gorm:"column:mail;not null"`
}

// TableName specifies the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ContactRepository implements contact.Repository interface
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// CreateContact inserts c and returns it with the id assigned by the
// database. A row with the same id is replaced.
func (r *ContactRepository) CreateContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	model := ContactModel{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&model).Error
	if err != nil {
		return contact.Contact{}, fmt.Errorf("sqldb: create contact: %w", err)
	}

	return toDomainContact(model), nil
}

func (r *ContactRepository) AllContacts(ctx context.Context) ([]contact.Contact, error) {
	var models []ContactModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("sqldb: list contacts: %w", err)
	}

	contacts := make([]contact.Contact, len(models))
	for i, model := range models {
		contacts[i] = toDomainContact(model)
	}
	return contacts, nil
}

// DeleteContact removes the row matching the whole target value. The
// remaining list is not needed by an identity-keyed table.
func (r *ContactRepository) DeleteContact(ctx context.Context, target contact.Contact, _ []contact.Contact) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND nombre = ? AND mail = ?", target.ID, target.Name, target.Email).
		Delete(&ContactModel{}).Error
	if err != nil {
		return fmt.Errorf("sqldb: delete contact %d: %w", target.ID, err)
	}
	return nil
}

func toDomainContact(m ContactModel) contact.Contact {
	return contact.Contact{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}
