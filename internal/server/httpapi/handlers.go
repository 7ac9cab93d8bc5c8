package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/projdash/internal/imagex"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/gin-gonic/gin"
)

// bodyOverhead is allowed on top of the picture limit.
const bodyOverhead = 64 << 10

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) register(c *gin.Context) {
	// the picture travels base64-encoded
	s.limitBody(c, s.maxUploadBytes*4/3)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c, err)
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.toService())
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "login", user.Login)
	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	res, err := s.users.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{AccessToken: res.AccessToken, User: newUserResponse(res.User)})
}

func (s *Server) me(c *gin.Context) {
	user, err := s.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (s *Server) uploadPicture(c *gin.Context) {
	s.limitBody(c, s.maxUploadBytes)

	data, err := s.readPicture(c)
	if err != nil {
		s.badBody(c, err)
		return
	}

	if err := s.avatars.Upload(c.Request.Context(), currentUserID(c), data); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// readPicture takes the "file" part of a multipart form, or the raw body
// otherwise. At most maxUploadBytes+1 bytes are read so that the avatar
// service can report oversized uploads.
func (s *Server) readPicture(c *gin.Context) ([]byte, error) {
	var src io.Reader = c.Request.Body

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file field: %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}

	if s.maxUploadBytes > 0 {
		src = io.LimitReader(src, s.maxUploadBytes+1)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("empty picture")
	}
	return buf.Bytes(), nil
}

// limitBody caps the request body at n bytes plus room for form framing and
// the other fields. A zero maxUploadBytes leaves the body unbounded.
func (s *Server) limitBody(c *gin.Context, n int64) {
	if s.maxUploadBytes <= 0 {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n+bodyOverhead)
}

// badBody answers 413 when the body hit limitBody and 400 otherwise.
func (s *Server) badBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorBody("request body too large"))
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("invalid request body"))
}

func (s *Server) getPicture(c *gin.Context) {
	data, contentType, err := s.avatars.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if contentType == "" {
		contentType = imagex.ContentTypePNG
	}
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) pictureURL(c *gin.Context) {
	url, err := s.avatars.PresignedURL(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.projects.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) createProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	p, err := s.projects.Create(c.Request.Context(), currentUserID(c), req.toFields())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProject(c *gin.Context) {
	var patch models.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.projects.Update(c.Request.Context(), currentUserID(c), c.Param("project_id"), patch); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.projects.Delete(c.Request.Context(), currentUserID(c), c.Param("project_id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) exportPDF(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.projects.ExportPDF(c.Request.Context(), currentUserID(c), &buf); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="projects.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
