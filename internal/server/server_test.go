package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/HelloAnner/northstar-verify/internal/config"
	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/store"
)

const keyA = "914401007RDD76M0RF"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	cfg.Data.DataDir = t.TempDir()

	var st *store.Store
	if withStore {
		var err error
		st, err = store.New(filepath.Join(cfg.Data.DataDir, "verify.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
	}
	tables := schema.Default()
	tables.Categories = nil
	return NewServer(cfg, st, tables, nil)
}

func do(t *testing.T, s *Server, req *http.Request) envelope {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func xlsxBytes(t *testing.T, sales int) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "零售"))
	require.NoError(t, f.SetSheetRow("零售", "A1", &[]any{"统一社会信用代码", "单位详细名称", "2025年12月销售额"}))
	require.NoError(t, f.SetSheetRow("零售", "A2", &[]any{keyA, "甲", sales}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func snapshotJSON(sales int) []byte {
	return []byte(`{"success":true,"data":{"result":{"headers":["企业","来源表","2025年12月销售额"],"rows":[{` +
		`"__creditCode":"` + keyA + `","__name":"甲","__industry":"零售","来源表":"零售","2025年12月销售额":` +
		jsonInt(sales) + `}]}}}`)
}

func jsonInt(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func verifyRequest(t *testing.T, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range files {
		name := field + ".json"
		if field == "input" || field == "export" {
			name = field + ".xlsx"
		}
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/verify", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestVerify_RecordsRun(t *testing.T) {
	s := newTestServer(t, true)

	env := do(t, s, verifyRequest(t, map[string][]byte{
		"input":  xlsxBytes(t, 1000),
		"export": xlsxBytes(t, 900),
		"before": snapshotJSON(1000),
		"after":  snapshotJSON(1000),
	}))
	require.Equal(t, 0, env.Code, env.Message)

	var rep model.Report
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.Equal(t, model.StatusFail, rep.Status)
	assert.True(t, rep.Import.Clean())
	require.Len(t, rep.Export.Mismatches, 1)
	assert.Equal(t, []string{"导出字段不一致：1"}, rep.Issues)

	env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, 0, env.Code)
	var runs []store.RunSummary
	require.NoError(t, json.Unmarshal(env.Data, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, rep.ID, runs[0].ID)
	assert.Equal(t, "input.xlsx", runs[0].InputFile)
	assert.Equal(t, 1, runs[0].ExportDiffs)

	env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/runs/"+rep.ID, nil))
	require.Equal(t, 0, env.Code)
	var stored model.Report
	require.NoError(t, json.Unmarshal(env.Data, &stored))
	assert.Equal(t, rep.ID, stored.ID)

	env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var status StatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.HistoryEnabled)
	assert.Equal(t, rep.ID, status.LastRunID)
	assert.Equal(t, 15, status.InputSheets)
}

func TestVerify_MissingRequiredFile(t *testing.T) {
	s := newTestServer(t, false)

	env := do(t, s, verifyRequest(t, map[string][]byte{
		"input":  xlsxBytes(t, 1000),
		"before": snapshotJSON(1000),
		"after":  snapshotJSON(1000),
	}))
	assert.Equal(t, codeBadRequest, env.Code)
	assert.Contains(t, env.Message, "export")
}

func TestVerify_UnreadableWorkbookStillReports(t *testing.T) {
	s := newTestServer(t, false)

	env := do(t, s, verifyRequest(t, map[string][]byte{
		"input":  []byte("not an xlsx"),
		"export": xlsxBytes(t, 1000),
		"before": snapshotJSON(1000),
		"after":  snapshotJSON(1000),
	}))
	require.Equal(t, 0, env.Code, env.Message)
	var rep model.Report
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.Equal(t, model.StatusFail, rep.Status)
	require.Len(t, rep.Import.Gaps, 1)
	assert.Equal(t, model.GapAxisUnusable, rep.Import.Gaps[0].Direction)
	assert.True(t, rep.Export.Clean())
}

func TestRuns_WithoutStore(t *testing.T) {
	s := newTestServer(t, false)

	env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, codeNoStore, env.Code)
	env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/runs/x", nil))
	assert.Equal(t, codeNoStore, env.Code)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestServer(t, true)

	env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/runs/unknown", nil))
	assert.Equal(t, codeNotFound, env.Code)

	env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/runs?limit=abc", nil))
	assert.Equal(t, codeBadRequest, env.Code)
}
