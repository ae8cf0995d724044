package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxUploadFiles    = 100
	maxUploadFileSize = 10 << 20 // per file
)

type UploadsHandler struct {
	dir    string
	client *http.Client
}

func NewUploadsHandler(dir string) *UploadsHandler {
	return &UploadsHandler{
		dir:    dir,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type uploadByLinkRequest struct {
	Link string `json:"link" binding:"required,url"`
}

// Upload stores the multipart "photos" files under random names and returns
// the generated filenames in upload order.
func (h *UploadsHandler) Upload(ctx *gin.Context) {
	form, err := ctx.MultipartForm()

	if err != nil {
		RespondBadRequest(ctx, "Expected multipart form data", nil)
		return
	}

	files := form.File["photos"]

	if len(files) == 0 {
		RespondBadRequest(ctx, "No photos in request", nil)
		return
	}

	if len(files) > maxUploadFiles {
		RespondBadRequest(ctx, "Too many files", nil)
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		RespondInternal(ctx, "Could not store upload")
		return
	}

	names := make([]string, 0, len(files))

	for _, file := range files {
		if file.Size > maxUploadFileSize {
			RespondBadRequest(ctx, "File too large", nil)
			return
		}

		name := randomName(filepath.Ext(file.Filename))

		if err := ctx.SaveUploadedFile(file, filepath.Join(h.dir, name)); err != nil {
			RespondInternal(ctx, "Could not store upload")
			return
		}

		names = append(names, name)
	}

	ctx.JSON(http.StatusOK, names)
}

// UploadByLink fetches a remote image and stores it like a direct upload.
func (h *UploadsHandler) UploadByLink(ctx *gin.Context) {
	var req uploadByLinkRequest

	if !BindJSON(ctx, &req) {
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx.Request.Context(), http.MethodGet, req.Link, nil)

	if err != nil {
		RespondBadRequest(ctx, "Invalid link", nil)
		return
	}

	resp, err := h.client.Do(httpReq)

	if err != nil {
		RespondError(ctx, http.StatusBadGateway, "fetch_failed", "Could not fetch the link", nil)
		return
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		RespondError(ctx, http.StatusBadGateway, "fetch_failed", fmt.Sprintf("Link returned status %d", resp.StatusCode), nil)
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		RespondInternal(ctx, "Could not store upload")
		return
	}

	name := randomName(linkExt(req.Link, resp.Header.Get("Content-Type")))
	dst, err := os.Create(filepath.Join(h.dir, name))

	if err != nil {
		RespondInternal(ctx, "Could not store upload")
		return
	}

	_, err = io.Copy(dst, io.LimitReader(resp.Body, maxUploadFileSize))

	if cerr := dst.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(filepath.Join(h.dir, name))
		RespondInternal(ctx, "Could not store upload")
		return
	}

	ctx.JSON(http.StatusOK, name)
}

func randomName(ext string) string {
	if ext == "" || strings.ContainsAny(ext, "/\\") {
		ext = ".jpg"
	}

	return uuid.NewString() + ext
}

func linkExt(link, contentType string) string {
	if ext := filepath.Ext(link); ext != "" && len(ext) <= 5 && !strings.Contains(ext, "/") {
		return ext
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}

	return ".jpg"
}
