package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"course-portal/internal/domain"
	"course-portal/internal/repository"
)

// The composite unique index is what actually prevents duplicate
// enrollments when two requests race past the service pre-check.
const createEnrollmentsTable = `
CREATE TABLE IF NOT EXISTS enrollments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id INTEGER NOT NULL,
	course_id INTEGER NOT NULL,
	enrolled_at DATETIME NOT NULL,
	FOREIGN KEY(student_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY(course_id) REFERENCES courses(id) ON DELETE CASCADE
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_student_course ON enrollments(student_id, course_id);
CREATE INDEX IF NOT EXISTS idx_enrollments_course_id ON enrollments(course_id);
`

type EnrollmentRepository struct {
	db *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) repository.EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEnrollmentsTable); err != nil {
		return fmt.Errorf("create enrollments table: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) (int64, error) {
	enrollment.EnrolledAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO enrollments (student_id, course_id, enrolled_at)
VALUES (?, ?, ?)`,
		enrollment.StudentID,
		enrollment.CourseID,
		enrollment.EnrolledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert enrollment: %w", repository.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("insert enrollment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("enrollment last insert id: %w", err)
	}
	enrollment.ID = id
	return id, nil
}

// GetForStudent scopes the lookup to the owner so foreign ids read as missing.
func (r *EnrollmentRepository) GetForStudent(ctx context.Context, id, studentID int64) (*domain.Enrollment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, student_id, course_id, enrolled_at
FROM enrollments
WHERE id = ? AND student_id = ?`, id, studentID)
	return scanEnrollment(row)
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]domain.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, student_id, course_id, enrolled_at
FROM enrollments
WHERE student_id = ?
ORDER BY id ASC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []domain.Enrollment{}
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *enrollment)
	}
	return enrollments, rows.Err()
}

func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `
SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = ? AND course_id = ?)`,
		studentID, courseID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

func (r *EnrollmentRepository) CountByStudent(ctx context.Context, studentID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE student_id = ?`, studentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

func scanEnrollment(row scanner) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	if err := row.Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.CourseID, &enrollment.EnrolledAt); err != nil {
		return nil, notFound(err, "enrollment")
	}
	return &enrollment, nil
}
