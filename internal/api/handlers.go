package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/riskledger/riskledger/internal/buildinfo"
	"github.com/riskledger/riskledger/internal/ingest"
	"github.com/riskledger/riskledger/internal/pipeline"
	"github.com/riskledger/riskledger/internal/present"
	"github.com/riskledger/riskledger/internal/report"
	"github.com/riskledger/riskledger/internal/upload"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProfileInfo describes a schema profile.
type ProfileInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TwoSided    bool     `json:"two_sided"`
	Required    []string `json:"required,omitempty"`
}

// ReportResponse is the JSON body of a successful upload.
type ReportResponse struct {
	Report  *report.Report        `json:"report"`
	Display present.DisplayReport `json:"display"`
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// health handles GET /health
func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// listProfiles handles GET /api/v1/profiles
func (s *Server) listProfiles(c echo.Context) error {
	var out []ProfileInfo
	for _, p := range s.engine.Profiles().All() {
		info := ProfileInfo{Name: p.Name, Description: p.Description, TwoSided: p.TwoSided}
		for _, f := range p.Required {
			info.Required = append(info.Required, f.String())
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

// createReport handles POST /api/v1/reports
func (s *Server) createReport(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, upload.ErrNoFile.Error())
	}
	if !upload.AllowedFile(fh.Filename) {
		return errorJSON(c, http.StatusBadRequest, upload.ErrNotCSV.Error())
	}

	req := pipeline.Request{Profile: strings.TrimSpace(c.FormValue("profile"))}
	if req.Profile != "" && s.engine.Profiles().Get(req.Profile) == nil {
		return errorJSON(c, http.StatusBadRequest, "unknown profile "+strconv.Quote(req.Profile))
	}
	if raw := strings.TrimSpace(c.FormValue("two_sided")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "two_sided must be true or false")
		}
		req.TwoSided = &v
	}
	format := strings.ToLower(strings.TrimSpace(c.FormValue("format")))
	switch format {
	case "":
		format = "json"
	case "json", "xlsx":
	default:
		return errorJSON(c, http.StatusBadRequest, "format must be json or xlsx")
	}

	src, err := fh.Open()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "could not read uploaded file")
	}
	defer src.Close()

	var rep *report.Report
	err = upload.With(s.uploadDir, fh.Filename, src, s.maxBytes, func(st *upload.Staged) error {
		req.Path = st.Path
		req.Source = st.Name
		r, err := s.engine.Run(c.Request().Context(), req)
		rep = r
		return err
	})
	if err != nil {
		return s.fail(c, err)
	}

	if format == "xlsx" {
		var buf bytes.Buffer
		if err := present.WriteXLSX(&buf, rep); err != nil {
			return s.fail(c, err)
		}
		name := strings.TrimSuffix(rep.Meta.Source, ".csv") + "-report.xlsx"
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
	}
	return c.JSON(http.StatusOK, ReportResponse{Report: rep, Display: present.View(rep)})
}

// fail maps pipeline and upload errors to a single user-facing message.
func (s *Server) fail(c echo.Context, err error) error {
	var (
		schemaErr *ingest.SchemaError
		emptyErr  *pipeline.EmptyInputError
		tooLarge  *upload.TooLargeError
	)
	switch {
	case errors.Is(err, upload.ErrNoFile), errors.Is(err, upload.ErrNotCSV):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &tooLarge):
		return errorJSON(c, http.StatusRequestEntityTooLarge, tooLarge.Error())
	case errors.As(err, &schemaErr):
		return errorJSON(c, http.StatusUnprocessableEntity, schemaErr.Error())
	case errors.As(err, &emptyErr):
		return errorJSON(c, http.StatusUnprocessableEntity, "the file contains no valid transaction rows")
	}
	s.logger.Error("processing upload failed", zap.Error(err))
	return errorJSON(c, http.StatusInternalServerError, "failed to process file")
}
