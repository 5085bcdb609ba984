package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

func sampleRecords() []dto.EmployeeRecord {
	submitted := time.Date(2026, 10, 1, 8, 30, 0, 123, time.UTC)
	updated := submitted.Add(time.Hour)
	return []dto.EmployeeRecord{
		{
			ID:            "b",
			FullName:      "Bea Stone",
			EmployeeID:    "EMP002",
			Email:         "bea@company.com",
			Phone:         "5551234567",
			Department:    "Design",
			Designation:   "Analyst",
			DateOfJoining: "2026-09-01",
			EmergencyContact: dto.EmergencyContact{
				Name: "Al Stone", Relationship: "Parent", Phone: "5559876543",
			},
			Resume:      &dto.ResumeMetadata{FileName: "cv.pdf", FileSize: 100, FileType: "application/pdf", UploadDate: submitted},
			Notes:       "first",
			SubmittedAt: submitted,
			UpdatedAt:   &updated,
		},
		{
			ID:          "a",
			FullName:    "Al Stone",
			EmployeeID:  "EMP001",
			Email:       "al@company.com",
			SubmittedAt: submitted,
		},
	}
}

func TestEncodeDecode_RoundTripPreservesOrder(t *testing.T) {
	in := sampleRecords()

	payload, err := Encode(in, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"schemaVersion":1`)

	out, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode(t *testing.T) {
	t.Run("legacy bare array", func(t *testing.T) {
		out, err := Decode([]byte(` [{"id":"1","employeeId":"EMP001"}]`))
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "EMP001", out[0].EmployeeID)
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := Decode([]byte("  "))
		assert.ErrorIs(t, err, ErrNoSnapshot)
	})

	t.Run("future schema", func(t *testing.T) {
		_, err := Decode([]byte(`{"schemaVersion":7,"employees":[]}`))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Decode([]byte(`{"schemaVersion":`))
		assert.Error(t, err)
	})

	t.Run("empty collection encodes as array", func(t *testing.T) {
		payload, err := Encode(nil, time.Now())
		require.NoError(t, err)
		assert.Contains(t, string(payload), `"employees":[]`)
	})
}

// exercise runs the Snapshotter contract against any backend.
func exercise(t *testing.T, s Snapshotter) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, s.Save(ctx, []byte(`first`)))
	require.NoError(t, s.Save(ctx, []byte(`second`)))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`second`), got)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exercise(t, m)
	assert.Equal(t, 2, m.Saves())

	boom := errors.New("disk full")
	m.FailWith(boom)
	assert.ErrorIs(t, m.Save(context.Background(), []byte("third")), boom)

	got, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(`second`), got)
}

func TestFile(t *testing.T) {
	f, err := NewFile(t.TempDir(), "hr_employees")
	require.NoError(t, err)
	exercise(t, f)
	assert.Contains(t, f.Path(), "hr_employees.json")
}

func TestSQLite(t *testing.T) {
	path := t.TempDir() + "/nested/employees.db"

	s, err := NewSQLite(path, "hr_employees")
	require.NoError(t, err)
	exercise(t, s)
	require.NoError(t, s.Close())

	// a second handle on the same file sees the last save
	reopened, err := NewSQLite(path, "hr_employees")
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(`second`), got)

	other, err := NewSQLite(path, "other")
	require.NoError(t, err)
	defer func() { _ = other.Close() }()
	_, err = other.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func TestS3(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := NewS3(fake, "hr", "snapshots/", "hr_employees")
	assert.Equal(t, "snapshots/hr_employees.json", s.Key())

	exercise(t, s)
	assert.Contains(t, fake.objects, "hr/snapshots/hr_employees.json")
}

func TestOpenS3RequiresBucket(t *testing.T) {
	_, err := OpenS3(context.Background(), S3Config{}, "hr_employees")
	assert.Error(t, err)
}
