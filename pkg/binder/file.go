package binder

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"reflect"
	"strings"
)

// DefaultMaxMemory is the default maximum memory used for parsing multipart forms (10MB).
const DefaultMaxMemory = 10 << 20 // 10 MB

// FileUpload represents an uploaded file with its metadata and content.
type FileUpload struct {
	// Filename is the original filename provided by the client
	Filename string

	// Size is the size of the file in bytes
	Size int64

	// Header contains the MIME header fields for this file part
	Header textproto.MIMEHeader

	// Content holds the file data in memory
	Content []byte
}

// ContentType returns the MIME type of the uploaded file.
// It first checks the Content-Type header, then falls back to
// detecting the type from the file extension.
func (f *FileUpload) ContentType() string {
	if ct := f.Header.Get("Content-Type"); ct != "" {
		mt, _, _ := mime.ParseMediaType(ct)
		return mt
	}
	return mime.TypeByExtension(filepath.Ext(f.Filename))
}

// File creates a file binder that processes fields with `file:` tags,
// extracting uploaded files from multipart/form-data requests.
//
// Supported field types:
//   - FileUpload - single file
//   - *FileUpload - optional single file
//   - []FileUpload - multiple files
//
// For non-multipart requests the binder reports ErrBinderNotApplicable.
func File() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if mediaType(r) != "multipart/form-data" {
			return ErrBinderNotApplicable
		}

		if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		if r.MultipartForm == nil {
			return fmt.Errorf("%w: no multipart form data", ErrInvalidFile)
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return fmt.Errorf("%w: target must be a non-nil pointer", ErrInvalidFile)
		}

		rv = rv.Elem()
		if rv.Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidFile)
		}

		rt := rv.Type()

		for i := 0; i < rv.NumField(); i++ {
			field := rv.Field(i)
			fieldType := rt.Field(i)

			if !field.CanSet() {
				continue
			}

			paramName, skip := parseFieldTag(fieldType, "file")
			if skip || fieldType.Tag.Get("file") == "" {
				continue
			}

			headers := r.MultipartForm.File[paramName]
			if len(headers) == 0 {
				continue
			}

			if err := setFileField(field, fieldType.Type, headers); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidFile, fieldType.Name, err)
			}
		}

		return nil
	}
}

func setFileField(field reflect.Value, fieldType reflect.Type, headers []*multipart.FileHeader) error {
	switch {
	case fieldType == reflect.TypeOf(FileUpload{}):
		upload, err := readUpload(headers[0])
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(*upload))

	case fieldType == reflect.TypeOf(&FileUpload{}):
		upload, err := readUpload(headers[0])
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(upload))

	case fieldType == reflect.TypeOf([]FileUpload{}):
		uploads := make([]FileUpload, 0, len(headers))
		for _, fh := range headers {
			upload, err := readUpload(fh)
			if err != nil {
				return err
			}
			uploads = append(uploads, *upload)
		}
		field.Set(reflect.ValueOf(uploads))

	default:
		return fmt.Errorf("unsupported file field type %s", fieldType)
	}

	return nil
}

func readUpload(fh *multipart.FileHeader) (*FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &FileUpload{
		Filename: sanitizeFilename(fh.Filename),
		Size:     fh.Size,
		Header:   fh.Header,
		Content:  content,
	}, nil
}

// sanitizeFilename strips path components so a hostile client cannot smuggle
// directory traversal through the uploaded filename.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "..", "")
	return strings.TrimSpace(filename)
}
