package domain

import "time"

// Course is a catalog entry. Courses are created by the seed process and are
// read-only to end users.
type Course struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
}

// CourseView is a Course annotated with values computed for a requester.
type CourseView struct {
	Course
	StudentCount int
	IsEnrolled   bool
}

// Enrollment links one student to one course. The (StudentID, CourseID) pair
// is unique.
type Enrollment struct {
	ID         int64
	StudentID  int64
	CourseID   int64
	EnrolledAt time.Time
}

// EnrollmentView is an Enrollment with its course embedded.
type EnrollmentView struct {
	Enrollment
	Course CourseView
}

// DashboardStats aggregates catalog counts for a requester. TotalStudents
// counts every registered user.
type DashboardStats struct {
	TotalCourses    int
	EnrolledCourses int
	TotalStudents   int
	PopularCourses  []CourseView
}
