package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHelpers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "students_name_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: constraintGradeSubject}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.Equal(t, "students_name_key", ConstraintName(unique))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.Equal(t, constraintGradeSubject, ConstraintName(fk))

	plain := errors.New("boom")
	assert.False(t, IsUniqueViolation(plain))
	assert.Empty(t, ConstraintName(plain))

	assert.True(t, IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
}

func TestMigrationsDeclareJournalConstraints(t *testing.T) {
	migs := Migrations()
	require.Len(t, migs, 1)
	assert.Equal(t, 1, migs[0].Version)
	for _, fragment := range []string{
		constraintGradeStudent,
		constraintGradeSubject,
		"ON DELETE CASCADE",
		"UNIQUE (student_id, subject_id)",
		"score >= 0 AND score <= 100",
	} {
		assert.Contains(t, migs[0].UpSQL, fragment)
	}
	assert.NotEmpty(t, migs[0].DownSQL)
}

func TestClosedConnectionRefusesWork(t *testing.T) {
	conn := &Connection{}
	conn.closed.Store(true)
	repo := NewJournalRepository(conn)
	ctx := context.Background()

	assert.ErrorIs(t, conn.Ping(ctx), ErrConnectionClosed)
	_, err := repo.ListStudents(ctx)
	assert.ErrorIs(t, err, ErrConnectionClosed)
	assert.ErrorIs(t, repo.DeleteSubject(ctx, 1), ErrConnectionClosed)
	assert.ErrorIs(t, conn.WithTx(ctx, func(pgx.Tx) error { return nil }), ErrConnectionClosed)
}
