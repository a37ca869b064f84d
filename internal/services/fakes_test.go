package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
)

type fakeAccounts struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*models.Account
	lastSeen map[uuid.UUID]int
}

func newFakeAccounts(accounts ...*models.Account) *fakeAccounts {
	f := &fakeAccounts{byID: make(map[uuid.UUID]*models.Account), lastSeen: make(map[uuid.UUID]int)}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) copyOf(a *models.Account) *models.Account {
	cp := *a
	return &cp
}

func (f *fakeAccounts) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[id]; ok {
		return f.copyOf(a), nil
	}
	return nil, nil
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			return f.copyOf(a), nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) GetByGoogleID(ctx context.Context, googleID string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.GoogleID.Valid && a.GoogleID.String == googleID {
			return f.copyOf(a), nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Account
	for _, a := range f.byID {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccounts) Create(ctx context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == account.Email {
			return database.ErrDuplicate
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	f.byID[account.ID] = f.copyOf(account)
	return nil
}

func (f *fakeAccounts) Update(ctx context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[account.ID]; !ok {
		return database.ErrNotFound
	}
	f.byID[account.ID] = f.copyOf(account)
	return nil
}

func (f *fakeAccounts) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return database.ErrNotFound
	}
	a.PasswordHash = models.NewNullString(passwordHash)
	return nil
}

func (f *fakeAccounts) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return database.ErrNotFound
	}
	a.GoogleID = models.NewNullString(googleID)
	return nil
}

func (f *fakeAccounts) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSeen[id]++
	return nil
}

func (f *fakeAccounts) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return database.ErrNotFound
	}
	a.IsActive = active
	return nil
}

type loginAttempt struct {
	email     string
	succeeded bool
}

type fakeLimiter struct {
	blocked  error
	attempts []loginAttempt
}

func (f *fakeLimiter) CheckLogin(ctx context.Context, email, ip string) error {
	return f.blocked
}

func (f *fakeLimiter) RecordAttempt(ctx context.Context, email, ip string, succeeded bool) error {
	f.attempts = append(f.attempts, loginAttempt{email: email, succeeded: succeeded})
	return nil
}

type fakeGoogle struct {
	identity *GoogleIdentity
}

func (f *fakeGoogle) Verify(credential string) (*GoogleIdentity, error) {
	if f.identity == nil || credential != "good-credential" {
		return nil, errors.New("token rejected")
	}
	return f.identity, nil
}

type fakeActivity struct {
	mu     sync.Mutex
	events []ActivityEvent
}

func (f *fakeActivity) Record(ctx context.Context, event ActivityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeActivity) actions() []models.ActivityAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ActivityAction, len(f.events))
	for i, e := range f.events {
		out[i] = e.Action
	}
	return out
}

// fakeImages hands out sequential paths and remembers what was deleted
type fakeImages struct {
	saved   []string
	deleted []string
	saveErr error
}

func (f *fakeImages) Save(file *multipart.FileHeader, kind UploadKind) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	p := "/uploads/" + kind.Folder + "/" + uuid.NewString() + ".webp"
	f.saved = append(f.saved, p)
	return p, nil
}

func (f *fakeImages) Delete(publicPath string) error {
	f.deleted = append(f.deleted, publicPath)
	return nil
}
