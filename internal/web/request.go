package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/autoprep/internal/core"
)

// newValidator returns a validator that names fields by their JSON tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a size-limited JSON body into v and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Processing.MaxBodySize)

	if err := render.DecodeJSON(r.Body, v); err != nil {
		return bodyReadError(err)
	}
	return s.check(v)
}

// check runs struct validation on v.
func (s *Server) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return fmt.Errorf("validation failed: %s: %w", describeFields(ve), ve)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func describeFields(ve validator.ValidationErrors) string {
	parts := make([]string, len(ve))
	for i, fe := range ve {
		parts[i] = fe.Field() + " (" + fe.Tag() + ")"
	}
	return strings.Join(parts, ", ")
}

// projectID returns the {id} path parameter after validating it.
func (s *Server) projectID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := s.validate.Var(id, "required,max=100,printascii,excludesall=/?#%"); err != nil {
		return "", fmt.Errorf("%w: %q", errInvalidID, id)
	}
	return id, nil
}

// datasetRequest is the input of the processing endpoints.
type datasetRequest struct {
	CSV       string                `json:"csv"`
	FileName  string                `json:"file_name" validate:"max=255"`
	Options   *core.CleaningOptions `json:"options"`
	ProjectID string                `json:"project_id" validate:"omitempty,max=100,printascii"`
}

// options returns the requested options or the defaults.
func (d datasetRequest) options() core.CleaningOptions {
	if d.Options == nil {
		return core.DefaultCleaningOptions()
	}
	return *d.Options
}

// readDataset accepts a JSON body ({"csv": ...}), a multipart form with a
// "file" part, or a raw text/csv body.
func (s *Server) readDataset(w http.ResponseWriter, r *http.Request) (datasetRequest, error) {
	var req datasetRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := s.readMultipart(w, r, &req); err != nil {
			return req, err
		}
	case "text/csv", "text/plain":
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Processing.MaxBodySize)
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return req, bodyReadError(err)
		}
		req.CSV = string(data)
		req.FileName = r.URL.Query().Get("file_name")
	default:
		if err := s.decodeJSON(w, r, &req); err != nil {
			return req, err
		}
	}

	if strings.TrimSpace(req.CSV) == "" {
		return req, errNoCSV
	}
	if req.FileName == "" {
		req.FileName = "dataset.csv"
	}
	return req, s.check(req)
}

func (s *Server) readMultipart(w http.ResponseWriter, r *http.Request, req *datasetRequest) error {
	maxSize := s.cfg.Processing.MaxBodySize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return bodyReadError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return errNoCSV
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return bodyReadError(err)
	}
	req.CSV = string(data)
	req.FileName = header.Filename
	req.ProjectID = r.FormValue("project_id")

	if raw := r.FormValue("options"); raw != "" {
		var opts core.CleaningOptions
		if err := render.DecodeJSON(strings.NewReader(raw), &opts); err != nil {
			return fmt.Errorf("%w: options: %v", errInvalidBody, err)
		}
		req.Options = &opts
	}
	return nil
}

func bodyReadError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return fmt.Errorf("file too large: exceeds %d bytes: %w", mbe.Limit, err)
	}
	return fmt.Errorf("%w: %v", errInvalidBody, err)
}
