package contact

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Service interface {
	LoadContacts(ctx context.Context) ([]Contact, error)
	ListContacts(ctx context.Context) ([]Contact, error)
	AddContact(ctx context.Context, c Contact) (Contact, error)
	RemoveContact(ctx context.Context, position int) error
}

// Repository is the durable storage of the contact collection.
//
// DeleteContact receives both the contact to delete and the working list
// without it. Backends that mirror the whole list persist remaining,
// backends keyed by identity delete target.
type Repository interface {
	AllContacts(ctx context.Context) ([]Contact, error)
	CreateContact(ctx context.Context, c Contact) (Contact, error)
	DeleteContact(ctx context.Context, target Contact, remaining []Contact) error
}

type Option func(uc *Usecase)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(uc *Usecase) {
		uc.logger = l
	}
}

// Usecase keeps the working list in sync with a Repository. The list only
// changes after the matching storage operation succeeded, and mutations are
// serialized.
type Usecase struct {
	r      Repository
	logger *zap.SugaredLogger

	mu       sync.Mutex
	contacts []Contact
}

func NewUsecase(r Repository, opts ...Option) *Usecase {
	uc := &Usecase{
		r:      r,
		logger: zap.NewNop().Sugar(),
	}
	for _, fn := range opts {
		fn(uc)
	}
	return uc
}

// LoadContacts replaces the working list with the stored contacts. On
// failure the working list is left empty.
func (uc *Usecase) LoadContacts(ctx context.Context) ([]Contact, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	contacts, err := uc.r.AllContacts(ctx)
	if err != nil {
		uc.contacts = nil
		uc.logger.Errorw("load contacts failed", "error", err)
		return nil, storageReadError(err)
	}

	uc.contacts = append([]Contact(nil), contacts...)
	uc.logger.Debugw("contacts loaded", "count", len(contacts))
	return uc.snapshot(), nil
}

func (uc *Usecase) ListContacts(_ context.Context) ([]Contact, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.snapshot(), nil
}

// AddContact validates the raw name and email in c, persists the result and
// appends the stored contact to the working list.
func (uc *Usecase) AddContact(ctx context.Context, c Contact) (Contact, error) {
	proposed, err := NewContact(c.Name, c.Email)
	if err != nil {
		return Contact{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	stored, err := uc.r.CreateContact(ctx, proposed)
	if err != nil {
		uc.logger.Errorw("add contact failed", "error", err)
		return Contact{}, storageWriteError("save", err)
	}

	uc.contacts = append(uc.contacts, stored)
	uc.logger.Infow("contact added", "id", stored.ID, "count", len(uc.contacts))
	return stored, nil
}

// RemoveContact deletes the contact at position in the working list.
func (uc *Usecase) RemoveContact(ctx context.Context, position int) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if position < 0 || position >= len(uc.contacts) {
		return ErrContactNotFound
	}

	target := uc.contacts[position]
	remaining := make([]Contact, 0, len(uc.contacts)-1)
	remaining = append(remaining, uc.contacts[:position]...)
	remaining = append(remaining, uc.contacts[position+1:]...)

	if err := uc.r.DeleteContact(ctx, target, remaining); err != nil {
		uc.logger.Errorw("remove contact failed", "position", position, "error", err)
		return storageWriteError("delete", err)
	}

	uc.contacts = remaining
	uc.logger.Infow("contact removed", "id", target.ID, "count", len(uc.contacts))
	return nil
}

func (uc *Usecase) snapshot() []Contact {
	out := make([]Contact, len(uc.contacts))
	copy(out, uc.contacts)
	return out
}
