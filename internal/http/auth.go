package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"course-portal/internal/service"
)

type registerRequest struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type loginRequest struct {
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" form:"refresh"`
}

type updateProfileRequest struct {
	Name *string `json:"name" form:"name"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !h.bind(c, &req) {
		return
	}

	upload, closeUpload, err := formUpload(c, "profile_pic")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Registration failed", map[string][]string{"profile_pic": {err.Error()}})
		return
	}
	defer closeUpload()

	user, pair, err := h.svc.Users.Register(c.Request.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		ProfilePic:      upload,
	})
	if err != nil {
		h.fail(c, err, "Registration failed")
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", gin.H{
		"user":   h.userToResponse(c.Request.Context(), user),
		"tokens": tokensToResponse(pair),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	user, pair, err := h.svc.Auth.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		h.fail(c, err, "Must include name and password")
		return
	}

	respond(c, http.StatusOK, "Login successful", gin.H{
		"user":   h.userToResponse(c.Request.Context(), user),
		"tokens": tokensToResponse(pair),
	})
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req refreshRequest
	if !h.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Refresh) == "" {
		respondError(c, http.StatusBadRequest, "Refresh token is required", map[string][]string{"refresh": {service.ErrRequired.Error()}})
		return
	}

	access, err := h.svc.Auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	respond(c, http.StatusOK, "", gin.H{"tokens": TokensResponse{Access: access}})
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.svc.Users.GetProfile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": h.userToResponse(c.Request.Context(), user)})
}

// updateProfile applies a partial update. Email and id are read-only and
// ignored when sent.
func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !h.bind(c, &req) {
		return
	}

	upload, closeUpload, err := formUpload(c, "profile_pic")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Profile update failed", map[string][]string{"profile_pic": {err.Error()}})
		return
	}
	defer closeUpload()

	user, err := h.svc.Users.UpdateProfile(c.Request.Context(), currentUser(c).ID, service.ProfileUpdate{
		Name:       req.Name,
		ProfilePic: upload,
	})
	if err != nil {
		h.fail(c, err, "Profile update failed")
		return
	}

	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"user": h.userToResponse(c.Request.Context(), user)})
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.svc.Auth.ChangePassword(c.Request.Context(), currentUser(c).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		msg := ""
		if errors.Is(err, service.ErrRequired) {
			msg = "Current password and new password are required"
		}
		h.fail(c, err, msg)
		return
	}

	respond(c, http.StatusOK, "Password changed successfully", nil)
}

// bind decodes JSON, urlencoded, or multipart bodies. An empty body binds
// nothing so missing fields surface as service validation errors.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBind(dst); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

// formUpload returns the named multipart file, or nil when the request has
// none. The returned func closes the file.
func formUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return nil, noop, nil
	}

	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("read upload: %w", err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("open upload: %w", err)
	}
	return &service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	}, func() { file.Close() }, nil
}
