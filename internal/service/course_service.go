package service

import (
	"context"

	"course-portal/internal/domain"
	"course-portal/internal/repository"
)

// CourseService lists the catalog.
type CourseService interface {
	// ListCourses annotates every course for requesterID; zero means anonymous.
	ListCourses(ctx context.Context, requesterID int64) ([]domain.CourseView, error)
}

type courseService struct {
	courses repository.CourseRepository
}

func NewCourseService(courses repository.CourseRepository) CourseService {
	return &courseService{courses: courses}
}

func (s *courseService) ListCourses(ctx context.Context, requesterID int64) ([]domain.CourseView, error) {
	return s.courses.ListViews(ctx, requesterID)
}
