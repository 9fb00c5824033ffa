package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// FormFile is an uploaded file attached to a multipart request.
type FormFile struct {
	Field   string
	Name    string
	Content []byte
}

// encodeMultipart builds a multipart/form-data body from plain fields and
// optional file parts.
func encodeMultipart(fields map[string]string, files ...FormFile) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write form field %q failed: %w", key, err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %q failed: %w", file.Field, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("write form file %q failed: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer failed: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
