package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// encodeMultipart builds a multipart/form-data body with the given text
// fields and image attachments under the "images" field, matching what the
// backend's upload middleware expects.
func encodeMultipart(fields map[string]string, images []Image) (contentType string, body []byte, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return "", nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, img := range images {
		part, err := w.CreateFormFile("images", img.Name)
		if err != nil {
			return "", nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return "", nil, fmt.Errorf("write image %s: %w", img.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}
