package repository

import (
	"context"

	"course-portal/internal/domain"
)

// CourseRepository exposes the course catalog. Every listing annotates
// courses for viewerID; a zero viewerID marks every course as not enrolled.
type CourseRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, course *domain.Course) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Course, error)
	GetByTitle(ctx context.Context, title string) (*domain.Course, error)
	GetView(ctx context.Context, id, viewerID int64) (*domain.CourseView, error)
	ListViews(ctx context.Context, viewerID int64) ([]domain.CourseView, error)
	ListPopular(ctx context.Context, viewerID int64, limit int) ([]domain.CourseView, error)
	ListEnrolled(ctx context.Context, studentID int64) ([]domain.CourseView, error)
	Count(ctx context.Context) (int, error)
}

// EnrollmentRepository manages student/course associations. Create returns
// ErrAlreadyExists when the pair is already present.
type EnrollmentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, enrollment *domain.Enrollment) (int64, error)
	GetForStudent(ctx context.Context, id, studentID int64) (*domain.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]domain.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID int64) (bool, error)
	CountByStudent(ctx context.Context, studentID int64) (int, error)
}
