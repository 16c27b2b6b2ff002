package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/pkg/response"
	"github.com/oksasatya/account-service/pkg/validation"
)

const pictureField = "profilePicture"

type ProfileHandler struct {
	Svc       *application.Service
	Logger    *logrus.Logger
	MaxUpload int64
}

func NewProfileHandler(svc *application.Service, logger *logrus.Logger, maxUpload int64) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger, MaxUpload: maxUpload}
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
}

type searchQuery struct {
	Q    string `form:"q"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

// Update accepts either JSON or multipart/form-data. Only the fields present
// in the request are changed.
func (h *ProfileHandler) Update(c *gin.Context) {
	var (
		in  application.UpdateProfileInput
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in, err = h.multipartInput(c)
	} else {
		in, err = jsonInput(c)
	}
	if err != nil {
		if errors.Is(err, application.ErrInvalidUpload) {
			writeError(c, h.Logger, err)
			return
		}
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if in.Picture != nil {
		if closer, ok := in.Picture.Body.(io.Closer); ok {
			defer func() { _ = closer.Close() }()
		}
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile updated", nil)
}

func jsonInput(c *gin.Context) (application.UpdateProfileInput, error) {
	var req updateProfileRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			return application.UpdateProfileInput{}, err
		}
	}
	return application.UpdateProfileInput{Username: req.Username, Bio: req.Bio, Location: req.Location}, nil
}

func (h *ProfileHandler) multipartInput(c *gin.Context) (application.UpdateProfileInput, error) {
	var in application.UpdateProfileInput
	if h.MaxUpload > 0 {
		limit := h.MaxUpload + 1<<20
		if c.Request.ContentLength > limit {
			return in, application.ErrInvalidUpload
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	if err := c.Request.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, application.ErrInvalidUpload
		}
		return in, err
	}
	if v, ok := c.GetPostForm("username"); ok {
		in.Username = &v
	}
	if v, ok := c.GetPostForm("bio"); ok {
		in.Bio = &v
	}
	if v, ok := c.GetPostForm("location"); ok {
		in.Location = &v
	}

	fh, err := c.FormFile(pictureField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, err
	}
	f, err := fh.Open()
	if err != nil {
		return in, err
	}
	in.Picture = &application.PictureUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
	return in, nil
}

func (h *ProfileHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetOwnProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

func (h *ProfileHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	available, err := h.Svc.CheckUsernameAvailability(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	msg := "Username is available"
	if !available {
		msg = "Username is already taken"
	}
	response.Success(c, http.StatusOK, gin.H{"username": username, "available": available, "message": msg}, msg, nil)
}

func (h *ProfileHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	out, err := h.Svc.SearchProfiles(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "profiles", gin.H{"count": len(out)})
}

func (h *ProfileHandler) Public(c *gin.Context) {
	p, err := h.Svc.GetPublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}
