package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/machines/internal/model"
)

func TestDefinitionStore_Get_Success(t *testing.T) {
	db := &mockDB{}
	s := NewDefinitionStore(db)
	ctx := context.Background()
	now := time.Now()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{int64(7)}).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*int64)) = 7
			*(dest[1].(*string)) = "ctfd-abc"
			*(dest[2].(*int)) = 30
			*(dest[3].(*string)) = `{"taskDefinition": {}}`
			*(dest[4].(*time.Time)) = now
			*(dest[5].(*time.Time)) = now
			return nil
		}})

	d, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "ctfd-abc", d.Slug)
	assert.Equal(t, 30*time.Minute, d.Duration())
}

func TestDefinitionStore_Get_Missing(t *testing.T) {
	db := &mockDB{}
	s := NewDefinitionStore(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFunc: func(...any) error { return pgx.ErrNoRows }})

	d, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDefinitionStore_Create_DBError(t *testing.T) {
	db := &mockDB{}
	s := NewDefinitionStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("unique violation"))

	err := s.Create(ctx, &model.MachineDefinition{ChallengeID: 7, Slug: "ctfd-abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create machine definition 7")
}

func TestDefinitionStore_List(t *testing.T) {
	db := &mockDB{}
	s := NewDefinitionStore(db)
	ctx := context.Background()

	scan := func(id int64) func(dest ...any) error {
		return func(dest ...any) error {
			*(dest[0].(*int64)) = id
			*(dest[1].(*string)) = "ctfd-x"
			return nil
		}
	}
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows(scan(1), scan(2)), nil)

	defs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, int64(2), defs[1].ChallengeID)
}

func TestDefinitionStore_Delete(t *testing.T) {
	db := &mockDB{}
	s := NewDefinitionStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{int64(7)}).Return(pgconn.CommandTag{}, nil)

	require.NoError(t, s.Delete(ctx, 7))
	db.AssertExpectations(t)
}
