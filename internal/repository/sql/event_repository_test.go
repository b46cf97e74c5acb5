package sql

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()

	t.Run("create assigns id and pending status", func(t *testing.T) {
		event := &model.Event{EventType: model.EventTypePriceObserved, EventData: json.RawMessage(`{"price":10}`)}

		mock.ExpectPrepare("INSERT INTO events").
			ExpectExec().
			WithArgs(sqlmock.AnyArg(), model.EventTypePriceObserved, []byte(`{"price":10}`), model.EventStatusPending, sqlmock.AnyArg(), nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		created, err := repo.Create(ctx, event)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, model.EventStatusPending, created.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list pending", func(t *testing.T) {
		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "event_type", "event_data", "status", "created_at", "processed_at"}).
			AddRow(id.String(), model.EventTypeAllTimeLow, []byte(`{"price":10}`), "pending", time.Now(), nil)

		mock.ExpectPrepare("SELECT (.+) FROM events").
			ExpectQuery().
			WithArgs(model.EventStatusPending, 100).
			WillReturnRows(rows)

		events, err := repo.ListPending(ctx, 100)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, id, events[0].ID)
		assert.Equal(t, model.EventTypeAllTimeLow, events[0].EventType)
		assert.JSONEq(t, `{"price":10}`, string(events[0].EventData))
		assert.Nil(t, events[0].ProcessedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update status of unknown event", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectPrepare("UPDATE events SET status").
			ExpectExec().
			WithArgs(model.EventStatusProcessed, id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, id, model.EventStatusProcessed)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
