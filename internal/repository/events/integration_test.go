//go:build integration

package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

func newRepository(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("registry"),
		tcpostgres.WithUsername("registry"),
		tcpostgres.WithPassword("registry"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	r := NewRepository(pool)
	require.NoError(t, r.EnsureSchema(ctx))
	return r
}

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()
	r := newRepository(t)

	id := uuid.New()
	exists, err := r.ExistsMessage(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	ev := dto.KafkaEvent{
		MessageID: id,
		Topic:     "hr.employees.onboarding",
		Key:       "EMP010",
		Partition: 0,
		Offset:    3,
		Payload:   []byte(`{"employee_id":"EMP010"}`),
	}
	require.NoError(t, r.InsertEvent(ctx, ev))
	require.ErrorIs(t, r.InsertEvent(ctx, ev), dto.ErrAlreadyExists)

	exists, err = r.ExistsMessage(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.InsertDLQ(ctx, dto.KafkaDLQ{
		Topic:   "hr.employees.onboarding",
		Key:     "EMP011",
		Payload: "{not json",
		Error:   "invalid_json",
	}))

	rows, err := r.ListEvents(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "EMP010", rows[0].Key)
	assert.JSONEq(t, `{"employee_id":"EMP010"}`, string(rows[0].Payload))

	dlq, err := r.ListDLQ(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, dlq, 1)
	assert.Equal(t, "{not json", dlq[0].Payload)

	require.NoError(t, r.ResetAll(ctx))
	rows, err = r.ListEvents(ctx, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
