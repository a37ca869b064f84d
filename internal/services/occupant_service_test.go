package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOccupants struct {
	byID     map[uuid.UUID]*models.Occupant
	accounts *fakeAccounts
	photoErr error
}

func newFakeOccupants(accounts *fakeAccounts, occupants ...models.Occupant) *fakeOccupants {
	f := &fakeOccupants{byID: make(map[uuid.UUID]*models.Occupant), accounts: accounts}
	for i := range occupants {
		o := occupants[i]
		f.byID[o.ID] = &o
	}
	return f
}

func (f *fakeOccupants) GetByID(ctx context.Context, id uuid.UUID) (*models.Occupant, error) {
	if o, ok := f.byID[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeOccupants) List(ctx context.Context, filter models.OccupantFilter) ([]models.Occupant, error) {
	var out []models.Occupant
	for _, o := range f.byID {
		if filter.Status == "" || o.Status == filter.Status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOccupants) ListActiveInRoom(ctx context.Context, room string) ([]models.Occupant, error) {
	var out []models.Occupant
	for _, o := range f.byID {
		if o.Status == models.OccupantStatusActive && o.RoomNumber.String == room {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOccupants) CreateWithAccount(ctx context.Context, account *models.Account, occupant *models.Occupant) error {
	if err := f.accounts.Create(ctx, account); err != nil {
		return err
	}
	occupant.ID = uuid.New()
	occupant.AccountID = account.ID
	occupant.Name, occupant.Email, occupant.Phone = account.Name, account.Email, account.Phone.String
	cp := *occupant
	f.byID[occupant.ID] = &cp
	return nil
}

func (f *fakeOccupants) Update(ctx context.Context, occupant *models.Occupant) error {
	if _, ok := f.byID[occupant.ID]; !ok {
		return database.ErrNotFound
	}
	cp := *occupant
	f.byID[occupant.ID] = &cp
	return nil
}

func (f *fakeOccupants) UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL string) error {
	if f.photoErr != nil {
		return f.photoErr
	}
	f.byID[id].PhotoURL = models.NewNullString(photoURL)
	return nil
}

func (f *fakeOccupants) Checkout(ctx context.Context, id uuid.UUID) error {
	o, ok := f.byID[id]
	if !ok {
		return database.ErrNotFound
	}
	o.Status = models.OccupantStatusCheckout
	return nil
}

func (f *fakeOccupants) Stats(ctx context.Context) (*models.OccupantStats, error) {
	return &models.OccupantStats{Total: len(f.byID)}, nil
}

type occupantFixture struct {
	service   *OccupantService
	occupants *fakeOccupants
	accounts  *fakeAccounts
	images    *fakeImages
	activity  *fakeActivity
}

func newOccupantFixture(t *testing.T, occupants ...models.Occupant) *occupantFixture {
	t.Helper()
	auth := newAuthFixture(t)
	logger, _ := test.NewNullLogger()
	f := &occupantFixture{
		accounts: auth.accounts,
		images:   &fakeImages{},
		activity: &fakeActivity{},
	}
	f.occupants = newFakeOccupants(f.accounts, occupants...)
	f.service = NewOccupantService(f.occupants, auth.service, f.images, f.activity, logger)
	return f
}

func strPtr(s string) *string { return &s }

func TestOccupantService_Create(t *testing.T) {
	f := newOccupantFixture(t)
	actor := uuid.New()

	occupant, err := f.service.Create(context.Background(), actor, models.OccupantInput{
		Name:        strPtr("Aarav Sharma"),
		Email:       strPtr(" Aarav@Example.com "),
		Phone:       strPtr("9876543210"),
		RoomNumber:  strPtr("309"),
		RoomType:    strPtr("double"),
		JoiningDate: strPtr("2025-06-01"),
		Coaching:    strPtr("Allen"),
	}, ClientInfo{IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "aarav@example.com", occupant.Email)
	assert.Equal(t, models.OccupantStatusActive, occupant.Status)
	assert.Equal(t, 1, occupant.RentDueDay)
	assert.Equal(t, models.RoomCategoryDouble, occupant.RoomType)
	assert.True(t, occupant.JoiningDate.Valid)

	account, _ := f.accounts.GetByID(context.Background(), occupant.AccountID)
	require.NotNil(t, account)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.True(t, account.HasPassword(), "a generated password is set when none is given")

	require.Len(t, f.activity.events, 1)
	assert.Equal(t, models.ActionUserCreate, f.activity.events[0].Action)
	assert.Equal(t, actor, f.activity.events[0].AccountID)
}

func TestOccupantService_CreateValidation(t *testing.T) {
	existing := resident("Ishaan", "310", models.RoomCategorySingle)
	f := newOccupantFixture(t, existing)
	_, err := f.service.Create(context.Background(), uuid.New(), models.OccupantInput{
		Name:  strPtr("Taken"),
		Email: strPtr("taken@example.com"),
	}, ClientInfo{})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   models.OccupantInput
		kind ErrorKind
	}{
		{"missing email", models.OccupantInput{Name: strPtr("A")}, KindInvalidArgument},
		{"blank name", models.OccupantInput{Name: strPtr("  "), Email: strPtr("a@b.in")}, KindInvalidArgument},
		{"bad date", models.OccupantInput{Name: strPtr("A"), Email: strPtr("a@b.in"), JoiningDate: strPtr("01/06/2025")}, KindInvalidArgument},
		{"bad due day", models.OccupantInput{Name: strPtr("A"), Email: strPtr("a@b.in"), RentDueDay: intPtr(31)}, KindInvalidArgument},
		{"bad category", models.OccupantInput{Name: strPtr("A"), Email: strPtr("a@b.in"), RoomType: strPtr("suite")}, KindInvalidArgument},
		{"full single", models.OccupantInput{Name: strPtr("A"), Email: strPtr("a@b.in"), RoomNumber: strPtr("310"), RoomType: strPtr("single")}, KindConflict},
		{"duplicate email", models.OccupantInput{Name: strPtr("B"), Email: strPtr("taken@example.com")}, KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), uuid.New(), tt.in, ClientInfo{})
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func intPtr(n int) *int { return &n }

func TestOccupantService_UpdateChecksRoomOnMove(t *testing.T) {
	a := resident("Aarav", "309", models.RoomCategoryDouble)
	b := resident("Ishaan", "310", models.RoomCategorySingle)
	f := newOccupantFixture(t, a, b)

	_, err := f.service.Update(context.Background(), b.ID, models.OccupantInput{RoomNumber: strPtr("309")})
	require.Error(t, err)
	assert.Equal(t, "Room 309 is already assigned as double", err.Error())

	updated, err := f.service.Update(context.Background(), b.ID, models.OccupantInput{
		RoomNumber: strPtr("309"),
		RoomType:   strPtr("double"),
		Notes:      strPtr("moved in with Aarav"),
	})
	require.NoError(t, err)
	assert.Equal(t, "309", updated.RoomNumber.String)

	// Editing an unrelated field does not re-run the room check.
	_, err = f.service.Update(context.Background(), a.ID, models.OccupantInput{Batch: strPtr("2026")})
	assert.NoError(t, err)

	_, err = f.service.Update(context.Background(), a.ID, models.OccupantInput{Name: strPtr(" ")})
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	_, err = f.service.Update(context.Background(), uuid.New(), models.OccupantInput{})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestOccupantService_Checkout(t *testing.T) {
	a := resident("Aarav", "309", models.RoomCategoryDouble)
	f := newOccupantFixture(t, a)

	require.NoError(t, f.service.Checkout(context.Background(), a.ID))
	assert.Equal(t, models.OccupantStatusCheckout, f.occupants.byID[a.ID].Status)

	err := f.service.Checkout(context.Background(), uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestOccupantService_UpdatePhoto(t *testing.T) {
	a := resident("Aarav", "309", models.RoomCategoryDouble)
	a.PhotoURL = models.NewNullString("/uploads/students/old.webp")
	f := newOccupantFixture(t, a)

	url, err := f.service.UpdatePhoto(context.Background(), a.ID, &multipart.FileHeader{})
	require.NoError(t, err)

	assert.Equal(t, url, f.occupants.byID[a.ID].PhotoURL.String)
	assert.Equal(t, []string{"/uploads/students/old.webp"}, f.images.deleted)
}

func TestOccupantService_UpdatePhotoStoreFailure(t *testing.T) {
	a := resident("Aarav", "309", models.RoomCategoryDouble)
	f := newOccupantFixture(t, a)
	f.occupants.photoErr = errors.New("db down")

	_, err := f.service.UpdatePhoto(context.Background(), a.ID, &multipart.FileHeader{})
	require.Error(t, err)

	require.Len(t, f.images.saved, 1)
	assert.Equal(t, f.images.saved, f.images.deleted, "the new file is removed when the row is not updated")
}

func TestOccupantService_ListRejectsUnknownStatus(t *testing.T) {
	f := newOccupantFixture(t)

	_, err := f.service.List(context.Background(), models.OccupantFilter{Status: "evicted"})
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestCheckRoomAssignment(t *testing.T) {
	double := resident("A", "309", models.RoomCategoryDouble)
	double2 := resident("B", "309", models.RoomCategoryDouble)
	single := resident("C", "301", models.RoomCategorySingle)
	untyped := resident("D", "305", models.RoomCategoryNone)

	tests := []struct {
		name      string
		category  models.RoomCategory
		roommates []models.Occupant
		wantErr   string
	}{
		{"empty room", models.RoomCategorySingle, nil, ""},
		{"second bed in double", models.RoomCategoryDouble, []models.Occupant{double}, ""},
		{"third bed in double", models.RoomCategoryDouble, []models.Occupant{double, double2}, "Room X is full"},
		{"category mismatch", models.RoomCategorySingle, []models.Occupant{double}, "Room X is already assigned as double"},
		{"single taken", models.RoomCategorySingle, []models.Occupant{single}, "Room X is full"},
		{"uncategorized joins single", models.RoomCategoryNone, []models.Occupant{single}, "Room X is full"},
		{"uncategorized roommates", models.RoomCategoryDouble, []models.Occupant{untyped}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRoomAssignment("X", tt.category, tt.roommates)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, KindConflict, KindOf(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
