package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"course-portal/internal/domain"
	"course-portal/internal/repository"
)

// EnrollmentService manages a student's own enrollments.
type EnrollmentService interface {
	ListEnrollments(ctx context.Context, studentID int64) ([]domain.EnrollmentView, error)
	CreateEnrollment(ctx context.Context, studentID, courseID int64) (*domain.EnrollmentView, error)
	GetEnrollment(ctx context.Context, studentID, enrollmentID int64) (*domain.EnrollmentView, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	logger      logrus.FieldLogger
}

func NewEnrollmentService(enrollments repository.EnrollmentRepository, courses repository.CourseRepository, logger logrus.FieldLogger) EnrollmentService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &enrollmentService{
		enrollments: enrollments,
		courses:     courses,
		logger:      logger,
	}
}

func (s *enrollmentService) ListEnrollments(ctx context.Context, studentID int64) ([]domain.EnrollmentView, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.ListEnrolled(ctx, studentID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.CourseView, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}

	views := make([]domain.EnrollmentView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		course, ok := byID[enrollment.CourseID]
		if !ok {
			return nil, fmt.Errorf("course %d missing for enrollment %d", enrollment.CourseID, enrollment.ID)
		}
		views = append(views, domain.EnrollmentView{Enrollment: enrollment, Course: course})
	}
	return views, nil
}

// CreateEnrollment pre-checks the pair for a friendly error; the store's
// unique index settles concurrent requests.
func (s *enrollmentService) CreateEnrollment(ctx context.Context, studentID, courseID int64) (*domain.EnrollmentView, error) {
	if courseID <= 0 {
		return nil, invalid("course", ErrRequired)
	}

	if _, err := s.courses.Get(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	exists, err := s.enrollments.Exists(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &domain.Enrollment{StudentID: studentID, CourseID: courseID}
	if _, err := s.enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": studentID, "course_id": courseID}).Info("enrolled")
	return s.view(ctx, enrollment)
}

func (s *enrollmentService) GetEnrollment(ctx context.Context, studentID, enrollmentID int64) (*domain.EnrollmentView, error) {
	enrollment, err := s.enrollments.GetForStudent(ctx, enrollmentID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return s.view(ctx, enrollment)
}

func (s *enrollmentService) view(ctx context.Context, enrollment *domain.Enrollment) (*domain.EnrollmentView, error) {
	course, err := s.courses.GetView(ctx, enrollment.CourseID, enrollment.StudentID)
	if err != nil {
		return nil, err
	}
	return &domain.EnrollmentView{Enrollment: *enrollment, Course: *course}, nil
}
