package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	"github.com/storefront/storefront-api/internal/core/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var (
	userCols = []string{"id", "username", "full_name", "email", "is_active", "scopes", "hashed_password", "created_at"}
	itemCols = []string{"id", "name", "description", "price", "tags", "in_stock", "created_at"}
)

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(username,.*\)\s*VALUES.*RETURNING\s+id$`).
		WithArgs("hari", "Hari", "", true, `["items:read"]`, "hash", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	got, err := repo.Create(context.Background(), &domain.User{
		Username: "hari", FullName: "Hari", IsActive: true,
		Scopes: []string{domain.ScopeItemsRead}, HashedPassword: "hash", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 7 || got.Username != "hari" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), &domain.User{Username: "hari"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserRepository_Create_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &domain.User{Username: "hari"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUserRepository_FindByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*username,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`).
		WithArgs("hari").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "hari", "", "h@example.com", true, []byte(`["items:read","items:write"]`), "hash", now))

	u, err := repo.FindByUsername(context.Background(), "hari")
	if err != nil {
		t.Fatalf("FindByUsername error: %v", err)
	}
	if u.ID != 1 || len(u.Scopes) != 2 || u.Scopes[1] != domain.ScopeItemsWrite || !u.IsActive {
		t.Fatalf("unexpected user: %+v", u)
	}

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+username`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.FindByUsername(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)FROM\s+users\s+ORDER\s+BY\s+id\s+LIMIT\s+\$1\s+OFFSET\s+\$2`).
		WithArgs(nil, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "a", "", "", true, []byte(`[]`), "h", now).
			AddRow(2, "b", "", "", false, []byte(`[]`), "h", now))

	users, err := repo.List(context.Background(), domain.UserFilter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(users) != 2 || users[1].IsActive {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	inactive := false
	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET.*COALESCE.*WHERE\s+id\s*=\s*\$1.*RETURNING`).
		WithArgs(int64(3), nil, nil, false, nil).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, "c", "", "", false, []byte(`[]`), "h", now))

	u, found, err := repo.Update(context.Background(), 3, domain.UserPatch{IsActive: &inactive})
	if err != nil || !found || u.IsActive {
		t.Fatalf("unexpected result: %+v %v %v", u, found, err)
	}

	mock.ExpectQuery(`UPDATE\s+users`).WillReturnError(sql.ErrNoRows)
	_, found, err = repo.Update(context.Background(), 99, domain.UserPatch{IsActive: &inactive})
	if err != nil || found {
		t.Fatalf("missing id must report found=false without error, got %v %v", found, err)
	}
}

func TestItemRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewItemRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+items\s*\(name,\s*description,\s*price,\s*tags,\s*in_stock\).*RETURNING\s+id,\s*created_at$`).
		WithArgs("Lamp", "", 19.5, `["home"]`, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))

	it, err := repo.Create(context.Background(), domain.ItemDraft{Name: "Lamp", Price: 19.5, Tags: []string{"home"}, InStock: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if it.ID != 11 || !it.CreatedAt.Equal(now) || it.Tags[0] != "home" {
		t.Fatalf("unexpected item: %+v", it)
	}
}

func TestItemRepository_ListAndGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewItemRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)FROM\s+items.*strpos\(lower\(name\),\s*lower\(\$1\)\).*LIMIT\s+\$2\s+OFFSET\s+\$3`).
		WithArgs("lamp", 10, 20).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(21, "Desk Lamp", "", 10.0, []byte(`[]`), true, now))

	items, err := repo.List(context.Background(), domain.ItemFilter{Query: "lamp", Limit: 10, Offset: 20})
	if err != nil || len(items) != 1 || items[0].ID != 21 {
		t.Fatalf("unexpected list: %+v %v", items, err)
	}

	mock.ExpectQuery(`FROM\s+items\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.Get(context.Background(), 5); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewItemRepository(db)
	now := time.Now().UTC()

	price := 30.0
	tags := []string{"sale"}
	mock.ExpectQuery(`(?s)^UPDATE\s+items\s+SET.*COALESCE`).
		WithArgs(int64(2), nil, nil, 30.0, `["sale"]`, nil).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(2, "Chair", "", 30.0, []byte(`["sale"]`), true, now))

	it, found, err := repo.Update(context.Background(), 2, domain.ItemPatch{Price: &price, Tags: &tags})
	if err != nil || !found {
		t.Fatalf("unexpected result: %v %v", found, err)
	}
	if it.Name != "Chair" || it.Price != 30 || it.Tags[0] != "sale" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrate_UsesEmbeddedMigrations(t *testing.T) {
	db, _ := newMock(t)

	var gotDir string
	orig := gooseUpContext
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	t.Cleanup(func() { gooseUpContext = orig })

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if gotDir != "migrations" {
		t.Fatalf("unexpected migrations dir %q", gotDir)
	}
	if _, err := migrationsFS.ReadFile("migrations/00001_init.sql"); err != nil {
		t.Fatalf("schema migration not embedded: %v", err)
	}
}

func TestMigrate_PropagatesError(t *testing.T) {
	db, _ := newMock(t)

	orig := gooseUpContext
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	t.Cleanup(func() { gooseUpContext = orig })

	if err := Migrate(context.Background(), db); err == nil {
		t.Fatalf("expected error")
	}
}
