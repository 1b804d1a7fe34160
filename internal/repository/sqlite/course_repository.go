package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"course-portal/internal/domain"
	"course-portal/internal/repository"
)

const createCoursesTable = `
CREATE TABLE IF NOT EXISTS courses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
`

// selectCourseView computes student_count and is_enrolled next to each row.
// The single bind parameter is the viewer's user id.
const selectCourseView = `
SELECT c.id, c.title, c.description, c.created_at,
	(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS student_count,
	EXISTS(SELECT 1 FROM enrollments e WHERE e.course_id = c.id AND e.student_id = ?) AS is_enrolled
FROM courses c`

type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) repository.CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCoursesTable); err != nil {
		return fmt.Errorf("create courses table: %w", err)
	}
	return nil
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) (int64, error) {
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO courses (title, description, created_at)
VALUES (?, ?, ?)`,
		course.Title,
		course.Description,
		course.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("course last insert id: %w", err)
	}
	course.ID = id
	return id, nil
}

func (r *CourseRepository) Get(ctx context.Context, id int64) (*domain.Course, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, description, created_at
FROM courses
WHERE id = ?`, id)
	return scanCourse(row)
}

func (r *CourseRepository) GetByTitle(ctx context.Context, title string) (*domain.Course, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, description, created_at
FROM courses
WHERE title = ?
ORDER BY id ASC
LIMIT 1`, title)
	return scanCourse(row)
}

func (r *CourseRepository) GetView(ctx context.Context, id, viewerID int64) (*domain.CourseView, error) {
	row := r.db.QueryRowContext(ctx, selectCourseView+`
WHERE c.id = ?`, viewerID, id)
	return scanCourseView(row)
}

func (r *CourseRepository) ListViews(ctx context.Context, viewerID int64) ([]domain.CourseView, error) {
	return r.queryViews(ctx, selectCourseView+`
ORDER BY c.id ASC`, viewerID)
}

// ListPopular orders by enrollment count descending. Ties fall back to id so
// repeated calls are stable, but callers must not rely on tie order.
func (r *CourseRepository) ListPopular(ctx context.Context, viewerID int64, limit int) ([]domain.CourseView, error) {
	return r.queryViews(ctx, selectCourseView+`
ORDER BY student_count DESC, c.id ASC
LIMIT ?`, viewerID, limit)
}

// ListEnrolled returns the courses studentID is enrolled in, in enrollment order.
func (r *CourseRepository) ListEnrolled(ctx context.Context, studentID int64) ([]domain.CourseView, error) {
	return r.queryViews(ctx, selectCourseView+`
JOIN enrollments mine ON mine.course_id = c.id AND mine.student_id = ?
ORDER BY mine.id ASC`, studentID, studentID)
}

func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

func (r *CourseRepository) queryViews(ctx context.Context, query string, args ...any) ([]domain.CourseView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	views := []domain.CourseView{}
	for rows.Next() {
		view, err := scanCourseView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, rows.Err()
}

func scanCourse(row scanner) (*domain.Course, error) {
	var course domain.Course
	if err := row.Scan(&course.ID, &course.Title, &course.Description, &course.CreatedAt); err != nil {
		return nil, notFound(err, "course")
	}
	return &course, nil
}

func scanCourseView(row scanner) (*domain.CourseView, error) {
	var view domain.CourseView
	if err := row.Scan(
		&view.ID,
		&view.Title,
		&view.Description,
		&view.CreatedAt,
		&view.StudentCount,
		&view.IsEnrolled,
	); err != nil {
		return nil, notFound(err, "course")
	}
	return &view, nil
}
