package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type createEnrollmentRequest struct {
	Course   *int64 `json:"course" form:"course"`
	CourseID *int64 `json:"course_id" form:"course_id"`
}

func (r createEnrollmentRequest) courseID() (int64, bool) {
	switch {
	case r.Course != nil:
		return *r.Course, true
	case r.CourseID != nil:
		return *r.CourseID, true
	}
	return 0, false
}

func (h *Handler) listCourses(c *gin.Context) {
	courses, err := h.svc.Courses.ListCourses(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"courses": coursesToResponse(courses)})
}

func (h *Handler) listEnrollments(c *gin.Context) {
	enrollments, err := h.svc.Enrollments.ListEnrollments(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	resp := make([]EnrollmentResponse, len(enrollments))
	for i := range enrollments {
		resp[i] = enrollmentToResponse(enrollments[i])
	}
	respond(c, http.StatusOK, "", gin.H{"enrollments": resp})
}

func (h *Handler) createEnrollment(c *gin.Context) {
	var req createEnrollmentRequest
	if !h.bind(c, &req) {
		return
	}
	courseID, ok := req.courseID()
	if !ok || courseID <= 0 {
		respondError(c, http.StatusBadRequest, "Course ID is required", nil)
		return
	}

	enrollment, err := h.svc.Enrollments.CreateEnrollment(c.Request.Context(), currentUser(c).ID, courseID)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	respond(c, http.StatusCreated, "Successfully enrolled in course", gin.H{"enrollment": enrollmentToResponse(*enrollment)})
}

func (h *Handler) getEnrollment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusNotFound, "Enrollment not found", nil)
		return
	}

	enrollment, err := h.svc.Enrollments.GetEnrollment(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"enrollment": enrollmentToResponse(*enrollment)})
}

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"stats": statsToResponse(stats)})
}

func (h *Handler) enrolledCourses(c *gin.Context) {
	courses, err := h.svc.Dashboard.EnrolledCourses(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"courses": coursesToResponse(courses)})
}
