package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vexpenses/internal/core"
	"vexpenses/internal/importer"
	"vexpenses/internal/insights"
	"vexpenses/internal/log"
	"vexpenses/internal/services"
	"vexpenses/internal/store"
)

func seedCollaborators() []core.Collaborator {
	return []core.Collaborator{
		{ID: "c1", Name: "Ana Oliveira", Department: "Marketing", AvatarRef: "https://i.pravatar.cc/150?img=1"},
		{ID: "c2", Name: "Carlos Mendes", Department: "Vendas", AvatarRef: "https://i.pravatar.cc/150?img=2"},
	}
}

func seedTransactions() []core.Transaction {
	return []core.Transaction{
		{
			ID: "EXP-1", Date: "2024-03-15", ImportDate: "2024-03-01", SourceFile: "Sistema Inicial",
			Collaborator: seedCollaborators()[0], CostCenter: "Marketing", Category: "Transporte",
			Value: decimal.RequireFromString("100"), Status: core.StatusPending,
			PaymentMethod: "Cartão Corporativo", Unit: "Matriz",
		},
		{
			ID: "EXP-2", Date: "2024-03-16", ImportDate: "2024-03-01", SourceFile: "Sistema Inicial",
			Collaborator: seedCollaborators()[1], CostCenter: "Vendas", Category: "Alimentação",
			Value: decimal.RequireFromString("300"), Status: core.StatusApproved,
			PaymentMethod: "Reembolso", Unit: "Filial SP",
		},
	}
}

func testSeed() core.ReferenceSeed {
	return core.ReferenceSeed{
		TotalExpenses: decimal.NewFromInt(310780),
		Monthly: []core.MonthlyPoint{
			{Label: "Jan", Value: decimal.NewFromInt(24500)},
		},
		CategoryColors:  map[string]string{"Transporte": "#3b82f6"},
		FallbackColor:   "#94a3b8",
		Savings:         52,
		SavingsTrend:    "8,9%",
		AvgApprovalTime: "1,2 dias",
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	st := store.New(seedTransactions(), seedCollaborators())
	logger := log.New(log.Config{Level: slog.LevelError, Component: log.ComponentHTTP})
	svc := services.NewExpenseService(st, nil, logger)
	pipeline := importer.New(st, importer.Lists{
		CostCenters:    []string{core.SentinelAll, "Marketing", "Vendas"},
		Units:          []string{"Todas", "Matriz"},
		Categories:     []string{"Transporte", "Alimentação"},
		PaymentMethods: []string{"Cartão Corporativo"},
	}, importer.Options{
		Clock:        func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) },
		Rand:         rand.New(rand.NewSource(1)),
		InspectDelay: -1,
		SettleDelay:  -1,
	})
	ins := insights.NewService(nil, time.Minute, logger)

	srv := NewServer(":0", st, svc, pipeline, ins, testSeed())
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts, st
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/readyz", nil))
}

func TestSummaryEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var got core.Summary
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/summary", &got))

	assert.True(t, got.TotalExpenses.Equal(decimal.NewFromInt(400)), "total = %s", got.TotalExpenses)
	assert.True(t, got.CorporateCardShare.Equal(decimal.RequireFromString("108")))
	assert.Equal(t, 1, got.PendingCount)
	assert.Equal(t, 52, got.Savings)
	require.Len(t, got.Categories, 2)
}

func TestSummaryEndpointWithCostCenterFilter(t *testing.T) {
	ts, _ := newTestServer(t)

	var got core.Summary
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/summary?costCenter=Marketing", &got))
	assert.True(t, got.TotalExpenses.Equal(decimal.NewFromInt(100)))

	var all core.Summary
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/summary?costCenter=Todos", &all))
	assert.True(t, all.TotalExpenses.Equal(decimal.NewFromInt(400)))
}

func TestInsightsEndpointNeverFails(t *testing.T) {
	ts, _ := newTestServer(t)

	var got map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/insights", &got))
	assert.Equal(t, insights.FallbackMessage, got["report"])
}

func TestSourceFilesEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var got []string
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/source-files", &got))
	assert.Equal(t, []string{core.SentinelAll, "Sistema Inicial"}, got)
}

func TestAuditEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var got []core.Transaction
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/audit?sourceFile="+url.QueryEscape("Sistema Inicial"), &got))
	assert.Len(t, got, 2)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/audit?sourceFile=missing.csv", &got))
	assert.Empty(t, got)
}

func TestListTransactions(t *testing.T) {
	ts, _ := newTestServer(t)

	var got []core.Transaction
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/transactions", &got))
	assert.Len(t, got, 2)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/transactions?status=pending", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "EXP-1", got[0].ID)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/transactions?costCenter=Vendas", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "EXP-2", got[0].ID)
}

func TestCreateTransaction(t *testing.T) {
	ts, st := newTestServer(t)

	body := `{"collaboratorId":"c1","date":"2024-03-18","costCenter":"Marketing","category":"Transporte","value":"150.00","paymentMethod":"Reembolso","unit":"Matriz"}`
	var created core.Transaction
	require.Equal(t, http.StatusCreated, postJSON(t, ts.URL+"/api/transactions", body, &created))

	assert.True(t, strings.HasPrefix(created.ID, "EXP-"))
	assert.Equal(t, core.StatusPending, created.Status)
	assert.Len(t, st.Transactions(), 3)
}

func TestCreateTransactionValidation(t *testing.T) {
	ts, st := newTestServer(t)

	bad := `{"collaboratorId":"c1","date":"2024-03-18","costCenter":"Marketing","category":"Transporte","value":"not-a-number","paymentMethod":"Reembolso","unit":"Matriz"}`
	assert.Equal(t, http.StatusUnprocessableEntity, postJSON(t, ts.URL+"/api/transactions", bad, nil))

	unknown := `{"collaboratorId":"ghost","date":"2024-03-18","costCenter":"Marketing","category":"Transporte","value":"10","paymentMethod":"Reembolso","unit":"Matriz"}`
	assert.Equal(t, http.StatusNotFound, postJSON(t, ts.URL+"/api/transactions", unknown, nil))

	assert.Equal(t, http.StatusBadRequest, postJSON(t, ts.URL+"/api/transactions", "{broken", nil))
	assert.Len(t, st.Transactions(), 2)
}

func TestApproveAndRejectFlow(t *testing.T) {
	ts, st := newTestServer(t)

	assert.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/api/transactions/EXP-1/approve", "", nil))
	got := st.Transactions()
	assert.Equal(t, core.StatusApproved, got[0].Status)

	// Terminal transactions admit no further transition.
	assert.Equal(t, http.StatusConflict, postJSON(t, ts.URL+"/api/transactions/EXP-1/reject", "", nil))
	assert.Equal(t, http.StatusNotFound, postJSON(t, ts.URL+"/api/transactions/ghost/approve", "", nil))
}

func TestDeleteTransaction(t *testing.T) {
	ts, st := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/transactions/EXP-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, st.Transactions(), 1)
}

func TestCollaboratorEndpoints(t *testing.T) {
	ts, st := newTestServer(t)

	var list []core.Collaborator
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/collaborators", &list))
	assert.Len(t, list, 2)

	var created core.Collaborator
	body := `{"name":"Beatriz Costa","department":"Financeiro"}`
	require.Equal(t, http.StatusCreated, postJSON(t, ts.URL+"/api/collaborators", body, &created))
	assert.True(t, strings.HasPrefix(created.ID, "collab-"))

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/collaborators/"+created.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, st.Collaborators(), 2)

	// No cascade: EXP-1 keeps its snapshot after deleting c1.
	req, err = http.NewRequest(http.MethodDelete, ts.URL+"/api/collaborators/c1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "Ana Oliveira", st.Transactions()[0].Collaborator.Name)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAvatarUpload(t *testing.T) {
	ts, st := newTestServer(t)

	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)
	body, contentType := multipartBody(t, "image", "avatar.png", png)
	resp, err := http.Post(ts.URL+"/api/collaborators/c1/avatar", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	c, err := st.Collaborator("c1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.AvatarRef, "data:image/png;base64,"))

	// The new avatar propagates into transaction snapshots.
	for _, tx := range st.Transactions() {
		if tx.Collaborator.ID == "c1" {
			assert.Equal(t, c.AvatarRef, tx.Collaborator.AvatarRef)
		}
	}
}

func TestAvatarUploadRejectsNonImage(t *testing.T) {
	ts, _ := newTestServer(t)

	body, contentType := multipartBody(t, "image", "notes.txt", []byte("plain text payload"))
	resp, err := http.Post(ts.URL+"/api/collaborators/c1/avatar", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestImportEndpoint(t *testing.T) {
	ts, st := newTestServer(t)
	before := len(st.Transactions())

	body, contentType := multipartBody(t, "file", "despesas_marco.csv", []byte("h1,h2\nA,B\nC,D\n"))
	resp, err := http.Post(ts.URL+"/api/import", contentType, body)
	require.NoError(t, err)
	var accepted map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "importing", accepted["status"])
	assert.Equal(t, "despesas_marco.csv", accepted["sourceFile"])

	// The import runs async; wait for the batch to land.
	require.Eventually(t, func() bool {
		return len(st.Transactions()) == before+2
	}, 2*time.Second, 10*time.Millisecond)

	imported := core.FilterByAudit(st.Transactions(), "despesas_marco.csv", "")
	require.Len(t, imported, 2)
	for _, tx := range imported {
		assert.Equal(t, core.StatusPending, tx.Status)
		assert.Equal(t, "2024-03-20", tx.ImportDate)
	}
}

func TestImportProgressEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var got struct {
		Active   bool `json:"active"`
		Progress int  `json:"progress"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/import/progress", &got))
	assert.False(t, got.Active)
	assert.Equal(t, 0, got.Progress)
}

func TestImportRejectsMissingFileField(t *testing.T) {
	ts, _ := newTestServer(t)

	body, contentType := multipartBody(t, "wrong", "a.csv", []byte("h\nx\n"))
	resp, err := http.Post(ts.URL+"/api/import", contentType, body)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/summary", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET", resp.Header.Get("Allow"))
}

func TestSecurityHeaders(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/summary")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}
