package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant-orders/internal/images"
)

// parseMultipart decodes a GraphQL multipart request: an "operations" JSON
// document, a "map" from file field to variable paths, and the files.
func (h *Handler) parseMultipart(c *gin.Context) (GraphQLRequest, func(), error) {
	var req GraphQLRequest
	noop := func() {}

	if h.cfg.Uploads.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Uploads.MaxBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return req, noop, fmt.Errorf("invalid multipart request: %w", err)
	}
	cleanup := func() { form.RemoveAll() }

	ops := form.Value["operations"]
	if len(ops) == 0 {
		cleanup()
		return req, noop, fmt.Errorf("missing multipart field \"operations\"")
	}
	if err := json.Unmarshal([]byte(ops[0]), &req); err != nil {
		cleanup()
		return req, noop, fmt.Errorf("operations must be a single JSON operation: %w", err)
	}
	if req.Variables == nil {
		req.Variables = map[string]interface{}{}
	}

	var fileMap map[string][]string
	if m := form.Value["map"]; len(m) > 0 {
		if err := json.Unmarshal([]byte(m[0]), &fileMap); err != nil {
			cleanup()
			return req, noop, fmt.Errorf("map must be a JSON object: %w", err)
		}
	}

	for key, paths := range fileMap {
		files := form.File[key]
		if len(files) == 0 {
			cleanup()
			return req, noop, fmt.Errorf("missing file %q", key)
		}
		upload := toUpload(files[0])
		for _, p := range paths {
			if err := setVariable(req.Variables, p, upload); err != nil {
				cleanup()
				return req, noop, err
			}
		}
	}
	return req, cleanup, nil
}

func toUpload(fh *multipart.FileHeader) *images.Upload {
	return &images.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// setVariable stores value at an object path such as
// "variables.input.orderInfo.uploadImageList.0".
func setVariable(vars map[string]interface{}, path string, value interface{}) error {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] != "variables" {
		return fmt.Errorf("unsupported upload path %q", path)
	}
	parts = parts[1:]

	var cur interface{} = vars
	for i, part := range parts {
		last := i == len(parts)-1
		switch node := cur.(type) {
		case map[string]interface{}:
			if last {
				node[part] = value
				return nil
			}
			cur = node[part]
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("upload path %q: bad index %q", path, part)
			}
			if last {
				node[idx] = value
				return nil
			}
			cur = node[idx]
		default:
			return fmt.Errorf("upload path %q does not exist in variables", path)
		}
	}
	return nil
}
