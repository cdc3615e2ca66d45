package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nkaewam/soundcloudy/config"
	"github.com/nkaewam/soundcloudy/internal/scdl"
)

// healthCheck godoc
// @Summary Health check
// @Tags Utility
// @Produce json
// @Success 200 {string} string "OK"
// @Router /healthcheck [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, "OK")
}

// download godoc
// @Summary Download a SoundCloud track
// @Description Resolves the SoundCloud URL given as the rest of the path and streams the audio file back.
// @Tags Downloads
// @Produce audio/mpeg,application/octet-stream
// @Param url path string true "SoundCloud URL"
// @Success 200 {file} binary "Audio file"
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Resource cannot be downloaded as a single file"
// @Failure 500 {object} ErrorResponse
// @Router /download/{url} [get]
func (s *Server) download(c *gin.Context) {
	url := strings.TrimPrefix(c.Param("url"), "/")
	if url == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrMissingURL.Error()})
		return
	}
	if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
		url += "?" + rawQuery
	}

	// Fixed options record: every flag off, client credentials only
	args := scdl.Args{
		URL:                url,
		NameFormat:         config.DefaultNameFormat,
		PlaylistNameFormat: config.DefaultPlaylistNameFormat,
		APIMode:            true,
	}

	result := s.downloader.Download(c.Request.Context(), args)

	switch r := result.(type) {
	case *scdl.File:
		if r == nil {
			s.unknownError(c, url)
			return
		}
		s.sendFile(c, r)
	case *scdl.Failure:
		if r == nil {
			s.unknownError(c, url)
			return
		}
		status := http.StatusBadRequest
		if r.UnsupportedForDirectDownload {
			status = http.StatusUnprocessableEntity
		}
		slog.Warn("Download failed", "url", url, "status", status, "error", r.Message, "requestId", c.GetString(requestIDKey))
		c.JSON(status, ErrorResponse{Error: r.Message})
	default:
		s.unknownError(c, url)
	}
}

func (s *Server) sendFile(c *gin.Context, file *scdl.File) {
	contentType := resolveContentType(file.ContentType, file.Filename)

	c.DataFromReader(http.StatusOK, int64(len(file.Data)), contentType, bytes.NewReader(file.Data), map[string]string{
		"Content-Disposition": contentDisposition(file.Filename),
	})
}

func (s *Server) unknownError(c *gin.Context, url string) {
	slog.Error("Downloader returned no result", "url", url, "requestId", c.GetString(requestIDKey))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: unknownErrorMessage})
}
