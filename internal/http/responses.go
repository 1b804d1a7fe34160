package http

import (
	"context"
	"time"

	"course-portal/internal/auth"
	"course-portal/internal/domain"
)

type UserResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	ProfilePic *string `json:"profile_pic"`
}

type TokensResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type CourseResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CreatedAt    string `json:"created_at"`
	StudentCount int    `json:"student_count"`
	IsEnrolled   bool   `json:"is_enrolled"`
}

type EnrollmentResponse struct {
	ID         int64          `json:"id"`
	Course     CourseResponse `json:"course"`
	EnrolledAt string         `json:"enrolled_at"`
}

type StatsResponse struct {
	TotalCourses    int              `json:"total_courses"`
	EnrolledCourses int              `json:"enrolled_courses"`
	TotalStudents   int              `json:"total_students"`
	PopularCourses  []CourseResponse `json:"popular_courses"`
}

func (h *Handler) userToResponse(ctx context.Context, user *domain.User) UserResponse {
	resp := UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
	if url := h.svc.Users.ProfilePicURL(ctx, user); url != "" {
		resp.ProfilePic = &url
	}
	return resp
}

func tokensToResponse(pair auth.Pair) TokensResponse {
	return TokensResponse{Access: pair.Access, Refresh: pair.Refresh}
}

func courseToResponse(course domain.CourseView) CourseResponse {
	return CourseResponse{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		CreatedAt:    course.CreatedAt.UTC().Format(time.RFC3339),
		StudentCount: course.StudentCount,
		IsEnrolled:   course.IsEnrolled,
	}
}

func coursesToResponse(courses []domain.CourseView) []CourseResponse {
	resp := make([]CourseResponse, len(courses))
	for i := range courses {
		resp[i] = courseToResponse(courses[i])
	}
	return resp
}

func enrollmentToResponse(enrollment domain.EnrollmentView) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         enrollment.ID,
		Course:     courseToResponse(enrollment.Course),
		EnrolledAt: enrollment.EnrolledAt.UTC().Format(time.RFC3339),
	}
}

func statsToResponse(stats *domain.DashboardStats) StatsResponse {
	return StatsResponse{
		TotalCourses:    stats.TotalCourses,
		EnrolledCourses: stats.EnrolledCourses,
		TotalStudents:   stats.TotalStudents,
		PopularCourses:  coursesToResponse(stats.PopularCourses),
	}
}
