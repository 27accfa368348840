package dao

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB starts a throwaway Postgres container. The unique-index
// behavior under test only exists on a real Postgres, so these tests
// skip when Docker is unavailable.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed tests in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=checkin_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})

	dsn := fmt.Sprintf("host=localhost port=%v user=postgres password=secret dbname=checkin_test sslmode=disable",
		resource.GetPort("5432/tcp"))

	var db *gorm.DB
	require.NoError(t, pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if openErr != nil {
			return openErr
		}

		sqlDB, pingErr := db.DB()
		if pingErr != nil {
			return pingErr
		}

		return sqlDB.Ping()
	}))

	require.NoError(t, InitTables(db))

	return db
}

func seedTraining(t *testing.T, db *gorm.DB) Training {
	t.Helper()

	training := Training{
		Name:           "Harvest Logistics",
		Venue:          "Regional Agriculture Office",
		Latitude:       9.03,
		Longitude:      38.74,
		GeofenceRadius: 150,
		StartDate:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Timezone:       "Africa/Addis_Ababa",
	}
	created, err := NewTrainingDAO(db).Insert(context.Background(), training)
	require.NoError(t, err)

	return created
}

func seedTrainee(t *testing.T, db *gorm.DB, email string) Trainee {
	t.Helper()

	created, err := NewTraineeDAO(db).Insert(context.Background(),
		User{Email: email, Password: "hash", Role: "trainee", Name: "Abebe"},
		Trainee{Name: "Abebe"})
	require.NoError(t, err)

	return created
}

func TestAttendanceDAO_DuplicateSuppression(t *testing.T) {
	db := setupTestDB(t)
	d := NewAttendanceDAO(db)

	training := seedTraining(t, db)
	trainee := seedTrainee(t, db, "abebe@example.com")

	record := Attendance{
		TraineeID:   trainee.ID,
		TrainingID:  training.ID,
		Date:        "2026-09-01",
		CheckInTime: time.Now(),
		QRToken:     "tok",
		Status:      "present",
	}

	_, err := d.Insert(context.Background(), record)
	require.NoError(t, err)

	_, err = d.Insert(context.Background(), record)
	assert.ErrorIs(t, err, ErrDuplicateAttendance)

	t.Run("same trainee on another date is fine", func(t *testing.T) {
		next := record
		next.Date = "2026-09-02"

		_, err := d.Insert(context.Background(), next)
		assert.NoError(t, err)
	})

	t.Run("lookup by trainee, training and date", func(t *testing.T) {
		found, err := d.FindByTraineeTrainingDate(context.Background(), trainee.ID, training.ID, "2026-09-01")

		require.NoError(t, err)
		assert.Equal(t, "tok", found.QRToken)
		assert.Equal(t, Date("2026-09-01"), found.Date, "the date round-trips in calendar shape")
	})

	t.Run("listed rows carry calendar-shaped dates", func(t *testing.T) {
		all, err := d.FindAll(context.Background(), AttendanceFilter{TraineeID: trainee.ID})

		require.NoError(t, err)
		require.NotEmpty(t, all)
		for _, row := range all {
			assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, string(row.Date))
		}
	})
}

func TestTrainingDAO_UpdateToken(t *testing.T) {
	db := setupTestDB(t)
	d := NewTrainingDAO(db)

	training := seedTraining(t, db)

	issuedAt := time.Now().Truncate(time.Second)
	require.NoError(t, d.UpdateToken(context.Background(), training.ID, "fresh-token", issuedAt))

	found, err := d.FindByID(context.Background(), training.ID)
	require.NoError(t, err)
	require.NotNil(t, found.QRToken)
	assert.Equal(t, "fresh-token", *found.QRToken)
	require.NotNil(t, found.TokenIssuedAt)

	t.Run("unknown training", func(t *testing.T) {
		err := d.UpdateToken(context.Background(), 9999, "tok", time.Now())

		assert.ErrorIs(t, err, ErrTrainingNotFound)
	})
}

func TestEnrollmentDAO(t *testing.T) {
	db := setupTestDB(t)
	d := NewEnrollmentDAO(db)

	training := seedTraining(t, db)
	trainee := seedTrainee(t, db, "almaz@example.com")

	enrollment, err := d.Insert(context.Background(), Enrollment{
		TraineeID:  trainee.ID,
		TrainingID: training.ID,
		Active:     true,
	})
	require.NoError(t, err)

	t.Run("double enrollment is refused", func(t *testing.T) {
		_, err := d.Insert(context.Background(), Enrollment{
			TraineeID:  trainee.ID,
			TrainingID: training.ID,
			Active:     true,
		})

		assert.ErrorIs(t, err, ErrEnrollmentExists)
	})

	t.Run("deactivation hides the enrollment from FindActive", func(t *testing.T) {
		_, err := d.FindActive(context.Background(), trainee.ID, training.ID)
		require.NoError(t, err)

		require.NoError(t, d.Deactivate(context.Background(), enrollment.ID))

		_, err = d.FindActive(context.Background(), trainee.ID, training.ID)
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})
}

func TestTraineeDAO_Insert(t *testing.T) {
	db := setupTestDB(t)

	first := seedTrainee(t, db, "worku@example.com")
	assert.NotZero(t, first.UserID)

	_, err := NewTraineeDAO(db).Insert(context.Background(),
		User{Email: "worku@example.com", Password: "hash", Role: "trainee", Name: "Worku"},
		Trainee{Name: "Worku"})

	assert.ErrorIs(t, err, ErrUserEmailExists)
}
