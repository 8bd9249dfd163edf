package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportForm struct {
	fields   map[string]string
	evidence []byte
}

func defaultReportForm() reportForm {
	return reportForm{
		fields: map[string]string{
			"key_type":             "email",
			"key_value":            "joao@mail.com",
			"account_holder_name":  "João Silva",
			"tax_id":               "11122233344",
			"bank_name":            "Banco A",
			"police_report_number": "BO-2025-123",
		},
		evidence: []byte("%PDF-1.4 fake evidence"),
	}
}

func submitReport(t *testing.T, server *httptest.Server, token string, form reportForm) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range form.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if form.evidence != nil {
		fw, err := mw.CreateFormFile("evidence", "evidence.pdf")
		require.NoError(t, err)
		_, err = fw.Write(form.evidence)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/reports", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, server *httptest.Server, token, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	return list
}

func TestSubmitReport(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "joao@example.com", "s3cret-pass")
	token := loginToken(t, server, "joao@example.com", "s3cret-pass")

	t.Run("valid multipart form creates a report", func(t *testing.T) {
		resp := submitReport(t, server, token, defaultReportForm())
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["id"])
		assert.Equal(t, "joão silva_11122233344", body["group_key"])
		assert.Equal(t, "email", body["key_type"])
		assert.NotContains(t, body, "evidence")
	})

	t.Run("missing required field is a validation error", func(t *testing.T) {
		form := defaultReportForm()
		delete(form.fields, "bank_name")

		resp := submitReport(t, server, token, form)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "validation_error", decodeBody(t, resp)["error"])
	})

	t.Run("missing evidence file is a validation error", func(t *testing.T) {
		form := defaultReportForm()
		form.evidence = nil

		resp := submitReport(t, server, token, form)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("without token is unauthorized", func(t *testing.T) {
		resp := submitReport(t, server, "", defaultReportForm())
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSearchAndGroups(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "joao@example.com", "s3cret-pass")
	token := loginToken(t, server, "joao@example.com", "s3cret-pass")

	// Same holder twice (email then random key), plus one unrelated report.
	first := defaultReportForm()
	require.Equal(t, http.StatusCreated, submitReport(t, server, token, first).StatusCode)

	second := defaultReportForm()
	second.fields["key_type"] = "random"
	second.fields["key_value"] = "k-9f2"
	second.fields["account_holder_name"] = " JOÃO SILVA "
	require.Equal(t, http.StatusCreated, submitReport(t, server, token, second).StatusCode)

	other := defaultReportForm()
	other.fields["account_holder_name"] = "Maria Souza"
	other.fields["tax_id"] = "99988877766"
	other.fields["key_type"] = "phone"
	other.fields["key_value"] = "11999990000"
	other.fields["bank_name"] = "Banco B"
	require.Equal(t, http.StatusCreated, submitReport(t, server, token, other).StatusCode)

	t.Run("detailed search lists raw reports", func(t *testing.T) {
		resp := get(t, server, token, "/api/reports")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decodeList(t, resp), 3)
	})

	t.Run("filters compose with AND", func(t *testing.T) {
		resp := get(t, server, token, "/api/reports?q=banco+a&key_type=email")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		list := decodeList(t, resp)
		require.Len(t, list, 1)
		assert.Equal(t, "joao@mail.com", list[0]["key_value"])
	})

	t.Run("invalid key type filter is a validation error", func(t *testing.T) {
		resp := get(t, server, token, "/api/reports?key_type=iban")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("groups collapse the same holder across key types", func(t *testing.T) {
		resp := get(t, server, token, "/api/reports/groups")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		list := decodeList(t, resp)
		require.Len(t, list, 2)
		// Two reports for João put his group first.
		assert.Equal(t, "joão silva_11122233344", list[0]["group_key"])
		assert.EqualValues(t, 2, list[0]["total_reports"])
		assert.Equal(t, "joao@mail.com", list[0]["exemplar_keys"])
		assert.EqualValues(t, 1, list[1]["total_reports"])
	})

	t.Run("group search respects filters", func(t *testing.T) {
		resp := get(t, server, token, "/api/reports/groups?q=maria")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		list := decodeList(t, resp)
		require.Len(t, list, 1)
		assert.Equal(t, "Maria Souza", list[0]["account_holder_name"])
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		resp := get(t, server, token, "/api/reports/groups?q=nothing-here")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, decodeList(t, resp))
	})
}

func TestAttachmentDownload(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "joao@example.com", "s3cret-pass")
	token := loginToken(t, server, "joao@example.com", "s3cret-pass")

	form := defaultReportForm()
	resp := submitReport(t, server, token, form)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reportID, _ := decodeBody(t, resp)["id"].(string)
	require.NotEmpty(t, reportID)

	t.Run("round-trips the uploaded bytes without a token", func(t *testing.T) {
		resp := get(t, server, "", "/api/reports/"+reportID+"/attachment")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))

		blob, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, form.evidence, blob)
	})

	t.Run("unknown report is 404", func(t *testing.T) {
		resp := get(t, server, "", "/api/reports/3f0c7a6e-3bfb-4b0a-9a6c-111111111111/attachment")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id is a bad request", func(t *testing.T) {
		resp := get(t, server, "", "/api/reports/not-a-uuid/attachment")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
