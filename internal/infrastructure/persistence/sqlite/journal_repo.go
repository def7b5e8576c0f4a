// Package sqlite stores the journal in a single SQLite file through gorm.
// It is the zero-setup alternative to the postgres driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// MODELS
// ══════════════════════════════════════════════════════════════════════════════

type studentModel struct {
	ID     int64        `gorm:"primaryKey;autoIncrement"`
	Name   string       `gorm:"size:100;not null;uniqueIndex"`
	Grades []gradeModel `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}

func (studentModel) TableName() string { return "students" }

type subjectModel struct {
	ID     int64        `gorm:"primaryKey;autoIncrement"`
	Name   string       `gorm:"size:100;not null;uniqueIndex"`
	Grades []gradeModel `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
}

func (subjectModel) TableName() string { return "subjects" }

type gradeModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	StudentID int64 `gorm:"not null;uniqueIndex:idx_grades_cell"`
	SubjectID int64 `gorm:"not null;uniqueIndex:idx_grades_cell;index"`
	Score     int   `gorm:"not null;check:score >= 0 AND score <= 100"`
}

func (gradeModel) TableName() string { return "grades" }

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// JournalRepository implements journal.Repository on gorm.
type JournalRepository struct {
	db *gorm.DB
}

var _ journal.Repository = (*JournalRepository)(nil)

// Open opens (or creates) the database at dsn and migrates the schema.
// Foreign keys are switched on so grade rows follow their parents.
func Open(dsn string) (*JournalRepository, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// One writer; the foreign_keys pragma is per connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if err := db.AutoMigrate(&studentModel{}, &subjectModel{}, &gradeModel{}); err != nil {
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &JournalRepository{db: db}, nil
}

// Ping checks that the underlying database answers.
func (r *JournalRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database handle.
func (r *JournalRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

func (r *JournalRepository) ListStudents(ctx context.Context) ([]journal.Student, error) {
	var rows []studentModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	out := make([]journal.Student, 0, len(rows))
	for _, m := range rows {
		out = append(out, journal.Student{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

func (r *JournalRepository) CreateStudent(ctx context.Context, name string) (journal.Student, error) {
	m := studentModel{Name: name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return journal.Student{}, journal.ErrStudentAlreadyExists
		}
		return journal.Student{}, fmt.Errorf("failed to create student: %w", err)
	}
	return journal.Student{ID: m.ID, Name: m.Name}, nil
}

// DeleteStudent removes the student and their grades in one transaction.
func (r *JournalRepository) DeleteStudent(ctx context.Context, id int64) error {
	return r.deleteWithGrades(ctx, &studentModel{}, "student_id", id, journal.ErrStudentNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Subjects
// ─────────────────────────────────────────────────────────────────────────────

func (r *JournalRepository) ListSubjects(ctx context.Context) ([]journal.Subject, error) {
	var rows []subjectModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	out := make([]journal.Subject, 0, len(rows))
	for _, m := range rows {
		out = append(out, journal.Subject{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

func (r *JournalRepository) CreateSubject(ctx context.Context, name string) (journal.Subject, error) {
	m := subjectModel{Name: name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return journal.Subject{}, journal.ErrSubjectAlreadyExists
		}
		return journal.Subject{}, fmt.Errorf("failed to create subject: %w", err)
	}
	return journal.Subject{ID: m.ID, Name: m.Name}, nil
}

// DeleteSubject removes the subject and its grades in one transaction.
func (r *JournalRepository) DeleteSubject(ctx context.Context, id int64) error {
	return r.deleteWithGrades(ctx, &subjectModel{}, "subject_id", id, journal.ErrSubjectNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Grades
// ─────────────────────────────────────────────────────────────────────────────

func (r *JournalRepository) ListGrades(ctx context.Context) ([]journal.Grade, error) {
	var rows []gradeModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	out := make([]journal.Grade, 0, len(rows))
	for _, m := range rows {
		out = append(out, journal.Grade{ID: m.ID, StudentID: m.StudentID, SubjectID: m.SubjectID, Score: m.Score})
	}
	return out, nil
}

// UpsertGrade checks both parents, then inserts or overwrites the score of
// the cell. The existing row id survives an overwrite.
func (r *JournalRepository) UpsertGrade(ctx context.Context, g journal.Grade) (journal.Grade, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &studentModel{}, g.StudentID, journal.ErrStudentNotFound); err != nil {
			return err
		}
		if err := exists(tx, &subjectModel{}, g.SubjectID, journal.ErrSubjectNotFound); err != nil {
			return err
		}

		m := gradeModel{StudentID: g.StudentID, SubjectID: g.SubjectID, Score: g.Score}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "subject_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score"}),
		}).Create(&m).Error
		if err != nil {
			return err
		}

		var stored gradeModel
		if err := tx.Where("student_id = ? AND subject_id = ?", g.StudentID, g.SubjectID).
			Take(&stored).Error; err != nil {
			return err
		}
		g.ID = stored.ID
		return nil
	})
	if err != nil {
		if journal.IsNotFound(err) {
			return journal.Grade{}, err
		}
		return journal.Grade{}, fmt.Errorf("failed to upsert grade: %w", err)
	}
	return g, nil
}

func (r *JournalRepository) deleteWithGrades(ctx context.Context, model any, column string, id int64, notFound error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(column+" = ?", id).Delete(&gradeModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete grades: %w", err)
		}
		res := tx.Delete(model, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound
		}
		return nil
	})
}

func exists(tx *gorm.DB, model any, id int64, notFound error) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
