package api

import (
	"errors"
	"io"
	"net/http"

	"GtnPortal/api/constants"
	"GtnPortal/internal/apperr"
	"GtnPortal/internal/checksum"
)

// Upload is a file received in the "file" form field.
type Upload struct {
	Name string
	Data []byte
}

// ReadUpload reads the multipart file field, capped at maxBytes. When the
// client sends X-Content-Sha256 the file must match it.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Wrap(apperr.KindInput, constants.ErrUploadTooLarge, err)
		}
		return nil, apperr.Wrap(apperr.KindInput, constants.ErrMissingFile, err)
	}
	file, header, err := r.FormFile(constants.FormFile)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInput, constants.ErrMissingFile, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInput, constants.ErrMissingFile, err)
	}

	if want := r.Header.Get(constants.HeaderContentSHA256); want != "" {
		ok, err := checksum.NewChecksumMatcher(want).Match(data)
		if err != nil || !ok {
			return nil, apperr.New(apperr.KindInput, constants.ErrChecksumMismatch)
		}
	}
	return &Upload{Name: header.Filename, Data: data}, nil
}
