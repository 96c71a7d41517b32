package server

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"kastelo.dev/cfgxlsx"
	"kastelo.dev/cfgxlsx/excel"
	"kastelo.dev/cfgxlsx/history"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

var errNoInput = errors.New("no configuration given")

type errorResponse struct {
	Error string `json:"error"`
}

func responseError(c echo.Context, code int, err error) error {
	return c.JSON(code, errorResponse{Error: err.Error()})
}

func (s *Server) IndexHandler(c echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}

func (s *Server) HealthHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// ConvertHandler converts the uploaded file (form field "file") or, when
// none is given, the pasted text (form field "cfg").
func (s *Server) ConvertHandler(c echo.Context) error {
	data, upload, err := readInput(c)
	if err != nil {
		return responseError(c, http.StatusBadRequest, err)
	}

	r, err := cfgxlsx.NewDecodingReader(bytes.NewReader(data), c.FormValue("charset"))
	if err != nil {
		return responseError(c, http.StatusBadRequest, err)
	}

	wb, bs, err := excel.Convert(r, s.opts)
	switch {
	case errors.Is(err, excel.ErrEmptyWorkbook):
		return responseError(c, http.StatusUnprocessableEntity, err)
	case err != nil:
		s.log.Error().Err(err).Str("upload", upload).Msg("conversion failed")
		return responseError(c, http.StatusInternalServerError, err)
	}

	if n := excel.OversizeCells(wb); n > 0 {
		s.log.Warn().Int("cells", n).Str("upload", upload).Msg("truncated oversize cells")
	}

	name := cfgxlsx.FinalName(cfgxlsx.DefaultName(s.now()), upload)
	s.record(c, name, upload, wb, len(bs))

	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	return c.Blob(http.StatusOK, excel.ContentType, bs)
}

// readInput returns the configuration bytes and, for uploads, the base name
// of the uploaded file.
func readInput(c echo.Context) ([]byte, string, error) {
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		fd, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		defer fd.Close()
		data, err := io.ReadAll(fd)
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Base(fh.Filename), nil

	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		text := c.FormValue("cfg")
		if strings.TrimSpace(text) == "" {
			return nil, "", errNoInput
		}
		return []byte(text), "", nil

	default:
		return nil, "", err
	}
}

func (s *Server) record(c echo.Context, name, upload string, wb *cfgxlsx.Workbook, size int) {
	if s.history == nil {
		return
	}
	source := "text"
	if upload != "" {
		source = upload
	}
	rec := history.Record{
		Name:      name,
		Source:    source,
		Sheets:    len(wb.Sheets),
		Rows:      wb.Rows(),
		Bytes:     size,
		CreatedAt: s.now(),
	}
	if err := s.history.Record(c.Request().Context(), rec); err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("recording conversion")
	}
}

func (s *Server) HistoryHandler(c echo.Context) error {
	if s.history == nil {
		return responseError(c, http.StatusNotFound, errors.New("history is not enabled"))
	}

	limit := defaultHistoryLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return responseError(c, http.StatusBadRequest, errors.New("limit must be a positive integer"))
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	recs, err := s.history.Recent(c.Request().Context(), limit)
	if err != nil {
		return responseError(c, http.StatusInternalServerError, err)
	}
	if recs == nil {
		recs = []history.Record{}
	}
	return c.JSON(http.StatusOK, recs)
}
