package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"course-portal/internal/domain"
	"course-portal/internal/repository"
)

// PopularCoursesLimit is how many courses the dashboard ranks.
const PopularCoursesLimit = 5

// DashboardService aggregates catalog statistics for the requesting user.
type DashboardService interface {
	Stats(ctx context.Context, userID int64) (*domain.DashboardStats, error)
	EnrolledCourses(ctx context.Context, userID int64) ([]domain.CourseView, error)
}

type dashboardService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	logger      logrus.FieldLogger
}

func NewDashboardService(users repository.UserRepository, courses repository.CourseRepository, enrollments repository.EnrollmentRepository, logger logrus.FieldLogger) DashboardService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &dashboardService{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		logger:      logger,
	}
}

func (s *dashboardService) Stats(ctx context.Context, userID int64) (*domain.DashboardStats, error) {
	totalCourses, err := s.courses.Count(ctx)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.enrollments.CountByStudent(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalStudents, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	popular, err := s.courses.ListPopular(ctx, userID, PopularCoursesLimit)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":          userID,
		"total_courses":    totalCourses,
		"enrolled_courses": enrolled,
		"total_students":   totalStudents,
		"popular_courses":  len(popular),
	}).Debug("dashboard stats")

	return &domain.DashboardStats{
		TotalCourses:    totalCourses,
		EnrolledCourses: enrolled,
		TotalStudents:   totalStudents,
		PopularCourses:  popular,
	}, nil
}

func (s *dashboardService) EnrolledCourses(ctx context.Context, userID int64) ([]domain.CourseView, error) {
	return s.courses.ListEnrolled(ctx, userID)
}
