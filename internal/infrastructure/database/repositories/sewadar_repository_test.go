package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sewasangat/import-service/internal/core/domain"
	"github.com/sewasangat/import-service/internal/core/services/importer"
)

// setupTestDB creates a PostgreSQL testcontainer for testing
func setupTestDB(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(pgdriver.Open(connStr), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Sewadar{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedSewadar(t *testing.T, db *gorm.DB, s domain.Sewadar) domain.Sewadar {
	t.Helper()
	require.NoError(t, db.Create(&s).Error)
	return s
}

func TestSewadarRepository_FindByBadgeNumbers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSewadarRepository(db, nil)
	ctx := context.Background()

	seedSewadar(t, db, domain.Sewadar{
		BadgeNumber: "HI1000GA0001", Name: "Amar Singh", FatherHusbandName: "Baldev Singh",
		Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent,
		CentreID: "1000", AreaCode: "HI",
	})
	seedSewadar(t, db, domain.Sewadar{
		BadgeNumber: "BD2000GA0001", Name: "Other Area", FatherHusbandName: "Father",
		Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent,
		CentreID: "2000", AreaCode: "BD",
	})

	badges := []string{"HI1000GA0001", "BD2000GA0001", "HI1000GA9999"}

	// Unscoped lookup sees both areas.
	all, err := repo.FindByBadgeNumbers(ctx, badges, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Area-scoped lookup filters the other area out.
	scoped, err := repo.FindByBadgeNumbers(ctx, badges, "HI")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "HI1000GA0001", scoped[0].BadgeNumber)

	none, err := repo.FindByBadgeNumbers(ctx, nil, "HI")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSewadarRepository_FindTemporaryMatches(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSewadarRepository(db, nil)
	ctx := context.Background()

	seedSewadar(t, db, domain.Sewadar{
		BadgeNumber: "HI1000GT0001", Name: "Amar Singh", FatherHusbandName: "Baldev Singh",
		Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusTemporary,
		CentreID: "1000", AreaCode: "HI",
	})
	// Same identity, different centre: no match.
	seedSewadar(t, db, domain.Sewadar{
		BadgeNumber: "HI1001GT0001", Name: "Amar Singh", FatherHusbandName: "Baldev Singh",
		Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusTemporary,
		CentreID: "1001", AreaCode: "HI",
	})
	// Same identity, permanent: temporary matching never touches it.
	seedSewadar(t, db, domain.Sewadar{
		BadgeNumber: "HI1000GA0009", Name: "Kiran Kaur", FatherHusbandName: "Harjit Singh",
		Gender: domain.GenderFemale, BadgeStatus: domain.BadgeStatusPermanent,
		CentreID: "1000", AreaCode: "HI",
	})

	matches, err := repo.FindTemporaryMatches(ctx, []importer.MatchCriteria{
		// Case-insensitive on names.
		{Name: "AMAR SINGH", FatherHusbandName: "baldev singh", CentreID: "1000"},
		{Name: "Kiran Kaur", FatherHusbandName: "Harjit Singh", CentreID: "1000"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "HI1000GT0001", matches[0].BadgeNumber)

	none, err := repo.FindTemporaryMatches(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSewadarRepository_FindBadgeOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSewadarRepository(db, nil)
	ctx := context.Background()

	seeded := seedSewadar(t, db, domain.Sewadar{
		BadgeNumber: "BD2000GA0007", Name: "Someone", FatherHusbandName: "Else",
		Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent,
		CentreID: "2000", AreaCode: "BD",
	})

	// Ownership lookup crosses area boundaries.
	owner, err := repo.FindBadgeOwner(ctx, "BD2000GA0007")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, seeded.ID, owner.ID)

	missing, err := repo.FindBadgeOwner(ctx, "HI1000GA9999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	blank, err := repo.FindBadgeOwner(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, blank)
}

func TestSewadarRepository_FindBadgeNumbersByPrefix(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSewadarRepository(db, nil)
	ctx := context.Background()

	for _, badge := range []string{"HI1000GA0001", "HI1000GA0003", "HI1000LT0001"} {
		seedSewadar(t, db, domain.Sewadar{
			BadgeNumber: badge, Name: "N", FatherHusbandName: "F",
			Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent,
			CentreID: "1000", AreaCode: "HI",
		})
	}

	badges, err := repo.FindBadgeNumbersByPrefix(ctx, "HI1000GA")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"HI1000GA0001", "HI1000GA0003"}, badges)
}

func TestSewadarRepository_BulkInsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSewadarRepository(db, nil)
	ctx := context.Background()

	records := []domain.Sewadar{
		{BadgeNumber: "HI1000GA0001", Name: "A", FatherHusbandName: "F1", Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent, CentreID: "1000", AreaCode: "HI"},
		{BadgeNumber: "HI1000GA0002", Name: "B", FatherHusbandName: "F2", Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent, CentreID: "1000", AreaCode: "HI"},
	}

	result, err := repo.BulkInsert(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Written)
	assert.Empty(t, result.Failures)

	var count int64
	require.NoError(t, db.Model(&domain.Sewadar{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestSewadarRepository_BulkInsert_DuplicateBadgeFailsOnlyThatRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSewadarRepository(db, nil)
	ctx := context.Background()

	seedSewadar(t, db, domain.Sewadar{
		BadgeNumber: "HI1000GA0001", Name: "Existing", FatherHusbandName: "F",
		Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent,
		CentreID: "1000", AreaCode: "HI",
	})

	records := []domain.Sewadar{
		{BadgeNumber: "HI1000GA0001", Name: "Dup", FatherHusbandName: "F1", Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent, CentreID: "1000", AreaCode: "HI"},
		{BadgeNumber: "HI1000GA0002", Name: "New", FatherHusbandName: "F2", Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent, CentreID: "1000", AreaCode: "HI"},
	}

	result, err := repo.BulkInsert(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 0, result.Failures[0].Index)

	owner, err := repo.FindBadgeOwner(ctx, "HI1000GA0002")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "New", owner.Name)
}

func TestSewadarRepository_BulkUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSewadarRepository(db, nil)
	ctx := context.Background()

	seeded := seedSewadar(t, db, domain.Sewadar{
		BadgeNumber: "HI1000GT0001", Name: "Amar Singh", FatherHusbandName: "Baldev Singh",
		Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusTemporary,
		CentreID: "1000", AreaCode: "HI",
	})

	seeded.BadgeNumber = "HI1000GA0001"
	seeded.BadgeStatus = domain.BadgeStatusPermanent
	seeded.UpdatedBy = "importer@hi"

	result, err := repo.BulkUpdate(ctx, []domain.Sewadar{seeded})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written)
	assert.Empty(t, result.Failures)

	owner, err := repo.FindBadgeOwner(ctx, "HI1000GA0001")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, seeded.ID, owner.ID)
	assert.Equal(t, domain.BadgeStatusPermanent, owner.BadgeStatus)
	assert.Equal(t, "importer@hi", owner.UpdatedBy)
}

func TestSewadarRepository_AbortsOnCancelledContext(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSewadarRepository(db, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.BulkInsert(ctx, []domain.Sewadar{
		{BadgeNumber: "HI1000GA0001", Name: "A", FatherHusbandName: "F", Gender: domain.GenderMale, BadgeStatus: domain.BadgeStatusPermanent, CentreID: "1000"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
