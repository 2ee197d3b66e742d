package database

import (
	"context"
	"testing"
	"testing/fstest"

	"aurachat/internal/config"
	"aurachat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		dialect string
		wantErr bool
	}{
		{name: "postgres", url: "postgres://u:p@localhost:5432/aurachat", dialect: DialectPostgres},
		{name: "postgresql", url: "postgresql://u:p@localhost/aurachat?sslmode=disable", dialect: DialectPostgres},
		{name: "sqlite file", url: "sqlite://aurachat.db", dialect: DialectSQLite},
		{name: "sqlite memory", url: "sqlite://:memory:", dialect: DialectSQLite},
		{name: "sqlite without path", url: "sqlite://", wantErr: true},
		{name: "mysql", url: "mysql://root@localhost/aurachat", wantErr: true},
		{name: "empty", url: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, dialect, err := Dialector(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
			assert.Equal(t, tt.dialect, dialect)
		})
	}
}

func TestWithSQLiteForeignKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "app.db?_foreign_keys=on", withSQLiteForeignKeys("app.db"))
	assert.Equal(t, "app.db?cache=shared&_foreign_keys=on", withSQLiteForeignKeys("app.db?cache=shared"))
	assert.Equal(t, "app.db?_foreign_keys=off", withSQLiteForeignKeys("app.db?_foreign_keys=off"))
}

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, configurePool(db, &config.Config{}))
	return db
}

func TestConfigurePool_SQLiteUsesSingleConnection(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		env      string
		mode     string
		dialect  string
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{name: "sqlite ignores sql mode", env: "development", mode: "sql", dialect: DialectSQLite, wantAuto: true},
		{name: "sqlite default", env: "production", mode: "", dialect: DialectSQLite, wantAuto: true},
		{name: "postgres auto in dev", env: "development", mode: "auto", dialect: DialectPostgres, wantAuto: true},
		{name: "postgres auto in prod", env: "production", mode: "auto", dialect: DialectPostgres, wantErr: true},
		{name: "postgres sql", env: "production", mode: "SQL", dialect: DialectPostgres, wantSQL: true},
		{name: "postgres hybrid dev", env: "development", mode: "hybrid", dialect: DialectPostgres, wantSQL: true, wantAuto: true},
		{name: "postgres hybrid prod", env: "production", mode: "hybrid", dialect: DialectPostgres, wantSQL: true},
		{name: "unknown mode", env: "development", mode: "yolo", dialect: DialectPostgres, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runSQL, runAuto, err := schemaPolicy(&config.Config{Env: tt.env, DBSchemaMode: tt.mode}, tt.dialect)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestApplySchema_SQLiteCreatesTables(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	require.NoError(t, ApplySchema(context.Background(), db, &config.Config{Env: "test"}))

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "hash", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	dup := models.User{Username: "alice", Email: "other@example.com", Password: "hash"}
	assert.Error(t, db.Create(&dup).Error, "username must be unique")
}

func TestGetSchemaStatus_SQLiteSkipsSQL(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	status, err := GetSchemaStatus(context.Background(), db, &config.Config{Env: "development", DBSchemaMode: "sql"})
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Equal(t, DialectSQLite, status.Dialect)
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	all := GetMigrations()
	require.NotEmpty(t, all)
	for i, m := range all {
		assert.NotEmpty(t, m.UpScript, m.String())
		assert.NotEmpty(t, m.DownScript, m.String())
		if i > 0 {
			assert.Greater(t, m.Version, all[i-1].Version)
		}
	}
	assert.Equal(t, "000001_init", all[0].String())
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	t.Parallel()

	t.Run("orders by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000002_b.up.sql":   {Data: []byte("B")},
			"m/000002_b.down.sql": {Data: []byte("b")},
			"m/000001_a.up.sql":   {Data: []byte("A")},
			"m/000001_a.down.sql": {Data: []byte("a")},
			"m/README.md":         {Data: []byte("ignored")},
		}
		got, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Version)
		assert.Equal(t, "a", got[0].Name)
		assert.Equal(t, "B", got[1].UpScript)
	})

	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{"m/000001_a.up.sql": {Data: []byte("A")}}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})

	t.Run("bad version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/abc_a.up.sql":   {Data: []byte("A")},
			"m/abc_a.down.sql": {Data: []byte("a")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})
}

func TestValidateAppliedVersions(t *testing.T) {
	t.Parallel()

	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}

func TestMigrationStore_ApplyAndRevert(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	ctx := context.Background()
	require.NoError(t, ensureMigrationLogTable(ctx, db))

	store := NewMigrationStore(db)
	m := Migration{
		Version:    42,
		Name:       "scratch",
		UpScript:   "CREATE TABLE scratch (id INTEGER PRIMARY KEY)",
		DownScript: "DROP TABLE scratch",
	}
	require.NoError(t, store.ApplyMigration(ctx, m))
	assert.True(t, db.Migrator().HasTable("scratch"))

	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{42}, applied)

	require.NoError(t, store.RevertMigration(ctx, m))
	assert.False(t, db.Migrator().HasTable("scratch"))
	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrationStore_NoTableMeansNothingApplied(t *testing.T) {
	t.Parallel()

	applied, err := NewMigrationStore(openMemory(t)).GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}
