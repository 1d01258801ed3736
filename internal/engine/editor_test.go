package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockStore simulates a document store without atomic rename.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]engine.ContactRecord, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]engine.ContactRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, name string) (engine.ContactRecord, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(engine.ContactRecord), args.Error(1)
}

func (m *MockStore) Upsert(ctx context.Context, rec engine.ContactRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// MockRenamerStore additionally offers an atomic rename.
type MockRenamerStore struct {
	MockStore
}

func (m *MockRenamerStore) Rename(ctx context.Context, oldName string, rec engine.ContactRecord) error {
	return m.Called(ctx, oldName, rec).Error(0)
}

var errStore = errors.New("store unavailable")

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestEditor_Create(t *testing.T) {
	// Scenario: admin saves name="Bob", phone="555-999-8888".
	store := new(MockStore)
	store.On("Upsert", mock.Anything, engine.ContactRecord{Name: "Bob", Phone: "(555) 999-8888"}).Return(nil).Once()

	s := &engine.EditSession{}
	s.BeginCreate()
	s.Name, s.Phone = "Bob", "555-999-8888"

	rec, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	require.NoError(t, err)
	assert.Equal(t, "(555) 999-8888", rec.Phone)
	assert.Equal(t, engine.StateIdle, s.State, "Successful save returns to Idle")
	store.AssertExpectations(t)
}

func TestEditor_InvalidPhone(t *testing.T) {
	// Scenario: admin saves phone="12345" -> no store write, field error shown.
	store := new(MockStore)

	s := &engine.EditSession{}
	s.BeginCreate()
	s.Name, s.Phone = "Bob", "12345"

	_, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidPhone)
	var ipe *engine.InvalidPhoneError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "12345", ipe.Digits)

	assert.Equal(t, engine.StateEditing, s.State, "Session stays open")
	assert.NotEmpty(t, s.PhoneError)
	assert.Equal(t, "Bob", s.Name, "User input is preserved")
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEditor_EmptyName(t *testing.T) {
	store := new(MockStore)
	s := &engine.EditSession{}
	s.BeginCreate()
	s.Name, s.Phone = "   ", "5559998888"

	_, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	assert.ErrorIs(t, err, engine.ErrInvalidName)
	assert.NotEmpty(t, s.NameError)
	assert.Equal(t, engine.StateEditing, s.State)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEditor_UpdateSameName(t *testing.T) {
	store := new(MockStore)
	store.On("Upsert", mock.Anything, engine.ContactRecord{Name: "Bob", Phone: "(555) 111-2222"}).Return(nil).Once()

	s := &engine.EditSession{}
	s.BeginEdit(engine.ContactRecord{Name: "Bob", Phone: "(555) 999-8888"})
	assert.Equal(t, "update", s.Op())
	s.Phone = "5551112222"

	_, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	require.NoError(t, err)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestEditor_RenameTwoStep(t *testing.T) {
	// Scenario: admin renames "Bob" to "Robert" on a store without atomic rename.
	store := new(MockStore)
	var calls []string
	store.On("Delete", mock.Anything, "Bob").Run(func(mock.Arguments) { calls = append(calls, "delete") }).Return(nil).Once()
	store.On("Upsert", mock.Anything, engine.ContactRecord{Name: "Robert", Phone: "(555) 999-8888"}).
		Run(func(mock.Arguments) { calls = append(calls, "upsert") }).Return(nil).Once()

	s := &engine.EditSession{}
	s.BeginEdit(engine.ContactRecord{Name: "Bob", Phone: "(555) 999-8888"})
	s.Name = "Robert"
	require.True(t, s.IsRename())

	_, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	require.NoError(t, err)
	assert.Equal(t, []string{"delete", "upsert"}, calls, "Delete old key, then create new key")
	store.AssertExpectations(t)
}

func TestEditor_RenamePartialFailure(t *testing.T) {
	// Delete succeeds, insert fails: "Bob" is gone and "Robert" does not exist.
	store := new(MockStore)
	store.On("Delete", mock.Anything, "Bob").Return(nil).Once()
	store.On("Upsert", mock.Anything, mock.Anything).Return(errStore).Once()

	s := &engine.EditSession{}
	s.BeginEdit(engine.ContactRecord{Name: "Bob", Phone: "(555) 999-8888"})
	s.Name = "Robert"

	_, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrPartialRename, "Data loss must be distinguishable")
	assert.ErrorIs(t, err, engine.ErrMutation, "It is still a mutation failure")
	assert.ErrorIs(t, err, errStore)

	var pre *engine.PartialRenameError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, "Bob", pre.OldName)
	assert.Equal(t, "Robert", pre.NewName)
	assert.Equal(t, engine.StateEditing, s.State)
}

func TestEditor_RenameDeleteFails(t *testing.T) {
	store := new(MockStore)
	store.On("Delete", mock.Anything, "Bob").Return(errStore).Once()

	s := &engine.EditSession{}
	s.BeginEdit(engine.ContactRecord{Name: "Bob", Phone: "(555) 999-8888"})
	s.Name = "Robert"

	_, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	assert.ErrorIs(t, err, engine.ErrMutation)
	assert.NotErrorIs(t, err, engine.ErrPartialRename, "Nothing was lost")
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEditor_RenameAtomic(t *testing.T) {
	store := new(MockRenamerStore)
	store.On("Rename", mock.Anything, "Bob", engine.ContactRecord{Name: "Robert", Phone: "(555) 999-8888"}).Return(nil).Once()

	s := &engine.EditSession{}
	s.BeginEdit(engine.ContactRecord{Name: "Bob", Phone: "(555) 999-8888"})
	s.Name = "Robert"

	_, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	require.NoError(t, err)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEditor_UpsertFailure(t *testing.T) {
	store := new(MockStore)
	store.On("Upsert", mock.Anything, mock.Anything).Return(errStore).Once()

	s := &engine.EditSession{}
	s.BeginCreate()
	s.Name, s.Phone = "Bob", "5559998888"

	_, err := (&engine.Editor{Store: store}).Save(context.Background(), s)

	var me *engine.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "create", me.Op)
	assert.Equal(t, engine.StateEditing, s.State)
}

func TestEditor_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store := new(MockStore)
		store.On("Delete", mock.Anything, "Ghost").Return(nil).Once()
		assert.NoError(t, (&engine.Editor{Store: store}).Delete(context.Background(), "Ghost"))
	})

	t.Run("NotFoundIsSilent", func(t *testing.T) {
		store := new(MockStore)
		store.On("Delete", mock.Anything, "Ghost").Return(engine.ErrNotFound).Once()
		assert.NoError(t, (&engine.Editor{Store: store}).Delete(context.Background(), "Ghost"))
	})

	t.Run("Failure", func(t *testing.T) {
		store := new(MockStore)
		store.On("Delete", mock.Anything, "Bob").Return(errStore).Once()
		err := (&engine.Editor{Store: store}).Delete(context.Background(), "Bob")
		assert.ErrorIs(t, err, engine.ErrMutation)
	})
}

func TestEditor_Load(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store := new(MockStore)
		store.On("List", mock.Anything).Return([]engine.ContactRecord{{Name: "Alice", Phone: "5551234567"}}, nil)

		list, err := (&engine.Editor{Store: store}).Load(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "(555) 123-4567", list[0].Phone)
	})

	t.Run("FetchError", func(t *testing.T) {
		store := new(MockStore)
		store.On("List", mock.Anything).Return(nil, errStore)

		list, err := (&engine.Editor{Store: store}).Load(context.Background())
		assert.Nil(t, list)
		assert.ErrorIs(t, err, engine.ErrFetch)
		assert.ErrorIs(t, err, errStore)
	})
}

func TestEditSession_Cancel(t *testing.T) {
	s := &engine.EditSession{}
	s.BeginEdit(engine.ContactRecord{Name: "Bob", Phone: "1"})
	assert.Equal(t, engine.StateEditing, s.State)
	assert.False(t, s.IsNew())

	s.Cancel()
	assert.Equal(t, engine.StateIdle, s.State)
	assert.True(t, s.IsNew())
}

func TestFilter(t *testing.T) {
	records := []engine.ContactRecord{{Name: "Alice"}, {Name: "Bob"}, {Name: "MALIK"}}

	tests := []struct {
		query string
		want  []string
	}{
		{"ali", []string{"Alice", "MALIK"}},
		{"ALI", []string{"Alice", "MALIK"}},
		{"bob", []string{"Bob"}},
		{"zzz", nil},
		{"", []string{"Alice", "Bob", "MALIK"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, r := range engine.Filter(records, tt.query) {
				got = append(got, r.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
