package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
	"github.com/apper-canvas/employee-registry-backend/internal/repository/employee"
	"github.com/apper-canvas/employee-registry-backend/internal/repository/snapshot"
	"github.com/apper-canvas/employee-registry-backend/internal/submission"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

var fixedNow = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

type fakeEvents struct {
	seen      map[uuid.UUID]bool
	events    []dto.KafkaEvent
	dlq       []dto.KafkaDLQ
	existsErr error
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{seen: map[uuid.UUID]bool{}}
}

func (f *fakeEvents) ExistsMessage(_ context.Context, id uuid.UUID) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.seen[id], nil
}

func (f *fakeEvents) InsertEvent(_ context.Context, ev dto.KafkaEvent) error {
	f.seen[ev.MessageID] = true
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeEvents) InsertDLQ(_ context.Context, d dto.KafkaDLQ) error {
	f.dlq = append(f.dlq, d)
	return nil
}

type recordingPublisher struct {
	created []dto.EmployeeRecord
}

func (p *recordingPublisher) PublishCreated(_ context.Context, rec dto.EmployeeRecord) error {
	p.created = append(p.created, rec)
	return nil
}

type fixture struct {
	store     *employee.Store
	events    *fakeEvents
	publisher *recordingPublisher
	h         *handler
}

func newFixture() *fixture {
	store := employee.NewStore(snapshot.NewMemory(), employee.WithLogger(zerolog.Nop()))
	store.Init(context.Background())

	v := validation.New(
		validation.WithClock(func() time.Time { return fixedNow }),
		validation.WithLocation(time.UTC),
	)

	fx := &fixture{store: store, events: newFakeEvents(), publisher: &recordingPublisher{}}
	fx.h = newOnboardingHandler(
		fx.events,
		submission.NewCoordinator(store, zerolog.Nop()),
		func() *form.Form { return form.New(v) },
		fx.publisher,
		zerolog.Nop(),
	)
	return fx
}

func draft(employeeID, email string) OnboardingPayload {
	return OnboardingPayload{
		ID:            "ignored",
		FullName:      "Anna Ivanova",
		EmployeeID:    employeeID,
		Email:         email,
		Phone:         "+1 555 123 4567",
		Department:    "Engineering",
		Designation:   "Developer",
		DateOfJoining: "2026-10-01",
		EmergencyContact: dto.EmergencyContact{
			Name:         "Pavel Ivanov",
			Relationship: "Spouse",
			Phone:        "(555) 987-6543",
		},
	}
}

func message(t *testing.T, env Envelope[OnboardingPayload]) *sarama.ConsumerMessage {
	t.Helper()
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "hr.employees.onboarding", Key: []byte(env.EmployeeID), Value: b, Offset: 7}
}

func envelope(p OnboardingPayload) Envelope[OnboardingPayload] {
	return Envelope[OnboardingPayload]{
		Kind:       string(kindOnboarding),
		MessageID:  uuid.New(),
		EmployeeID: p.EmployeeID,
		Payload:    p,
		Timestamp:  fixedNow,
		Source:     "ats",
	}
}

func TestProcessOnboarding_CreatesRecord(t *testing.T) {
	fx := newFixture()
	env := envelope(draft("EMP010", "anna@company.com"))

	ok := fx.h.processOnboarding(context.Background(), message(t, env), env)
	require.True(t, ok)

	assert.Equal(t, 1, fx.store.Count())
	rec, err := fx.store.FindByUniqueKey(context.Background(), dto.KeyEmployeeID, "EMP010")
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", rec.ID)

	require.Len(t, fx.events.events, 1)
	assert.Equal(t, env.MessageID, fx.events.events[0].MessageID)
	assert.Empty(t, fx.events.dlq)
	require.Len(t, fx.publisher.created, 1)
	assert.Equal(t, rec.ID, fx.publisher.created[0].ID)
}

func TestProcessOnboarding_RedeliveryIsSkipped(t *testing.T) {
	fx := newFixture()
	env := envelope(draft("EMP010", "anna@company.com"))
	msg := message(t, env)

	require.True(t, fx.h.processOnboarding(context.Background(), msg, env))
	require.True(t, fx.h.processOnboarding(context.Background(), msg, env))

	assert.Equal(t, 1, fx.store.Count())
	assert.Empty(t, fx.events.dlq)
}

func TestProcessOnboarding_RejectionsGoToDLQ(t *testing.T) {
	tests := []struct {
		name   string
		prep   func(fx *fixture)
		env    func() Envelope[OnboardingPayload]
		reason string
	}{
		{
			name: "missing message id",
			env: func() Envelope[OnboardingPayload] {
				env := envelope(draft("EMP010", "anna@company.com"))
				env.MessageID = uuid.Nil
				return env
			},
			reason: "missing required field message_id",
		},
		{
			name: "incomplete",
			env: func() Envelope[OnboardingPayload] {
				p := draft("EMP010", "anna@company.com")
				p.Phone = ""
				p.Designation = ""
				return envelope(p)
			},
			reason: string(submission.OutcomeIncomplete),
		},
		{
			name: "invalid field",
			env: func() Envelope[OnboardingPayload] {
				return envelope(draft("emp-10", "anna@company.com"))
			},
			reason: `validation_failed: {"employeeId":"Employee ID must be 3-10 characters (uppercase letters and numbers)"}`,
		},
		{
			name: "duplicate employee id",
			prep: func(fx *fixture) {
				_, err := fx.store.Create(context.Background(), draft("EMP010", "other@company.com"))
				require.NoError(t, err)
			},
			env: func() Envelope[OnboardingPayload] {
				return envelope(draft("EMP010", "anna@company.com"))
			},
			reason: string(submission.OutcomeDuplicateKey),
		},
		{
			name: "events repository down",
			prep: func(fx *fixture) {
				fx.events.existsErr = errors.New("connection refused")
			},
			env: func() Envelope[OnboardingPayload] {
				return envelope(draft("EMP010", "anna@company.com"))
			},
			reason: "events.ExistsMessage: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture()
			if tt.prep != nil {
				tt.prep(fx)
			}
			before := fx.store.Count()
			env := tt.env()

			ok := fx.h.processOnboarding(context.Background(), message(t, env), env)
			assert.True(t, ok, "rejected messages are committed")

			require.Len(t, fx.events.dlq, 1)
			assert.Contains(t, fx.events.dlq[0].Error, tt.reason)
			assert.Equal(t, "hr.employees.onboarding", fx.events.dlq[0].Topic)
			assert.Equal(t, before, fx.store.Count())
			assert.Empty(t, fx.publisher.created)
		})
	}
}

func TestRejectionReason(t *testing.T) {
	err := &form.ValidationFailedError{Errors: map[validation.Field]string{
		validation.FieldEmail: "Please enter a valid email address",
	}}
	assert.Equal(t,
		`validation_failed: {"email":"Please enter a valid email address"}`,
		rejectionReason(err))

	assert.Equal(t, "persistence_failed: boom", rejectionReason(errors.New("boom")))
}
