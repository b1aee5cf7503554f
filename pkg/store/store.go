package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const migrateLockID int64 = 52003117

// Store owns the database handle. Every public operation runs through
// WithTx, which opens one transaction, commits on success and rolls back
// on any error.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and runs auto-migrations behind an advisory
// lock so concurrent instances do not race on schema changes.
func Open(dsn string) (*Store, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, migrate); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open GORM handle and runs migrations on it.
// Tests use this with an in-memory SQLite database.
func NewWithDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("nil db handle")
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&AuthorModel{},
		&GenreModel{},
		&BookModel{},
		&CopyModel{},
		&MemberModel{},
		&LoanModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// Tx bundles the per-entity repositories bound to one transaction.
type Tx struct {
	Authors *AuthorRepo
	Genres  *GenreRepo
	Books   *BookRepo
	Members *MemberRepo
	Loans   *LoanRepo
}

func newTx(db *gorm.DB) *Tx {
	return &Tx{
		Authors: &AuthorRepo{db: db},
		Genres:  &GenreRepo{db: db},
		Books:   &BookRepo{db: db},
		Members: &MemberRepo{db: db},
		Loans:   &LoanRepo{db: db},
	}
}

// WithTx runs fn inside one database transaction. A nil return commits;
// any error rolls the whole transaction back. Storage-native failures
// coming out of the transaction are translated to domain error kinds;
// domain errors raised inside fn pass through untouched.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(newTx(gtx))
	})
	return translateError(err)
}

// applyPage turns 1-indexed page/limit into offset/limit on the query.
// Callers handle limit <= 0 before reaching here.
func applyPage(db *gorm.DB, page, limit int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	return db.Offset((page - 1) * limit).Limit(limit)
}
