package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsRegistered(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)

	first := all[0]
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "000001_create_warbler_schema", first.String())
	assert.Contains(t, first.UpScript, "CREATE TABLE IF NOT EXISTS likes")
	assert.Contains(t, first.DownScript, "DROP TABLE IF EXISTS users")

	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Version, all[i].Version)
	}
}

func TestGetMigrationByVersion(t *testing.T) {
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999999))
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7, 3}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000003, 000007")
}

type fakeMigrationStore struct {
	applied []int
	failOn  int
	ran     []string
}

func (f *fakeMigrationStore) GetAppliedMigrations(context.Context) ([]int, error) {
	return f.applied, nil
}

func (f *fakeMigrationStore) ApplyMigration(_ context.Context, version int, name, _ string) error {
	if version == f.failOn {
		return errors.New("boom")
	}
	f.applied = append(f.applied, version)
	f.ran = append(f.ran, name)
	return nil
}

func (f *fakeMigrationStore) RemoveMigration(context.Context, int) error { return nil }

func TestApplyPending_SkipsApplied(t *testing.T) {
	store := &fakeMigrationStore{applied: []int{1}}
	registered := []Migration{{Version: 1, Name: "one"}, {Version: 2, Name: "two"}, {Version: 3, Name: "three"}}

	require.NoError(t, applyPending(context.Background(), store, registered))
	assert.Equal(t, []string{"two", "three"}, store.ran)
}

func TestApplyPending_StopsOnFailure(t *testing.T) {
	store := &fakeMigrationStore{failOn: 2}
	registered := []Migration{{Version: 1, Name: "one"}, {Version: 2, Name: "two"}, {Version: 3, Name: "three"}}

	err := applyPending(context.Background(), store, registered)
	require.Error(t, err)
	assert.Equal(t, []string{"one"}, store.ran)
}

func TestIsMissingTableError(t *testing.T) {
	assert.True(t, isMissingTableError(errors.New(`ERROR: relation "migration_logs" does not exist`)))
	assert.True(t, isMissingTableError(errors.New("no such table: migration_logs")))
	assert.False(t, isMissingTableError(errors.New("connection refused")))
}
