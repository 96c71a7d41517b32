package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kastelo.dev/cfgxlsx/excel"
	"kastelo.dev/cfgxlsx/history"
	"kastelo.dev/cfgxlsx/server"
)

var fixedNow = time.UnixMilli(1704067201000).UTC()

type memStore struct {
	recs []history.Record
	err  error
}

func (m *memStore) Record(_ context.Context, rec history.Record) error {
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memStore) Recent(_ context.Context, limit int) ([]history.Record, error) {
	if limit > len(m.recs) {
		limit = len(m.recs)
	}
	return m.recs[:limit], nil
}

func newServer(store server.Store) *server.Server {
	return server.New(server.Config{
		Options: excel.DefaultOptions(),
		History: store,
		Logger:  zerolog.Nop(),
		Now:     func() time.Time { return fixedNow },
	})
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestConvertUpload(t *testing.T) {
	store := &memStore{}
	s := newServer(store)

	body, ct := multipartBody(t, "service.cfg", "[A]\nx=1\ny=2\n[B]\nz=3", map[string]string{"cfg": "[ignored]\nk=v"})
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, excel.ContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "service_20240101_1704067201000.xlsx")

	wb, err := excel.ReadXLSXBytes(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "A", wb.Sheets[0].Name)
	assert.Equal(t, [][2]string{{"z", "3"}}, wb.Sheets[1].Rows)

	require.Len(t, store.recs, 1)
	assert.Equal(t, "service_20240101_1704067201000.xlsx", store.recs[0].Name)
	assert.Equal(t, "service.cfg", store.recs[0].Source)
	assert.Equal(t, 2, store.recs[0].Sheets)
	assert.Equal(t, 3, store.recs[0].Rows)
	assert.Equal(t, rec.Body.Len(), store.recs[0].Bytes)
}

func TestConvertText(t *testing.T) {
	s := newServer(nil)

	form := url.Values{"cfg": {"[A]\nx=1"}}
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "export_20240101_1704067201000.xlsx")
}

func TestConvertCharset(t *testing.T) {
	s := newServer(nil)

	body, ct := multipartBody(t, "legacy.cfg", "[R\xe4kning]\nk=\xf6", map[string]string{"charset": "latin1"})
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	wb, err := excel.ReadXLSXBytes(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Räkning", wb.Sheets[0].Name)
	assert.Equal(t, [][2]string{{"k", "ö"}}, wb.Sheets[0].Rows)
}

func TestConvertErrors(t *testing.T) {
	s := newServer(nil)

	cases := []struct {
		name string
		form url.Values
		code int
	}{
		{"no input", url.Values{}, http.StatusBadRequest},
		{"blank text", url.Values{"cfg": {"  \n "}}, http.StatusBadRequest},
		{"no sections", url.Values{"cfg": {"x=1"}}, http.StatusUnprocessableEntity},
		{"unknown charset", url.Values{"cfg": {"[A]\nx=1"}, "charset": {"klingon-8"}}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(tc.form.Encode()))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			rec := httptest.NewRecorder()
			s.Echo.ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestConvertRecordFailureIgnored(t *testing.T) {
	s := newServer(&memStore{err: errors.New("database down")})

	form := url.Values{"cfg": {"[A]\nx=1"}}
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHistoryHandler(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newServer(nil).Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		store := &memStore{recs: []history.Record{{Name: "a.xlsx"}, {Name: "b.xlsx"}}}
		rec := httptest.NewRecorder()
		newServer(store).Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var recs []history.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
		require.Len(t, recs, 1)
		assert.Equal(t, "a.xlsx", recs[0].Name)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newServer(&memStore{}).Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=zero", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIndexAndHealth(t *testing.T) {
	s := newServer(nil)

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/convert"`)

	rec = httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
