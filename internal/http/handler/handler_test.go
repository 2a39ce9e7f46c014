package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doccompare/internal/extract"
	llmMocks "doccompare/internal/llm/mocks"
	"doccompare/internal/model"
	"doccompare/internal/ratelimit"
	"doccompare/internal/report"
	"doccompare/internal/service"
	serviceMocks "doccompare/internal/service/mocks"
)

const validModelOutput = `{"executiveSummary":"Both bids cover the same scope.","agreements":["Delivery within 30 days."],"disputes":["Price: $10k vs $12k."],"uniqueDoc1":[],"uniqueDoc2":["Extended warranty."]}`

func newTestApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	RegisterRoutes(app, deps)
	return app
}

func compareRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// instantService runs the real retry loop without waiting between attempts.
func instantService(gen *llmMocks.MockGenerator) service.ComparisonService {
	opt := service.DefaultComparisonOptions()
	opt.Sleep = func(context.Context, time.Duration) error { return nil }
	return service.NewComparisonService(gen, opt)
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Code)
	})

	t.Run("no database configured", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCompare(t *testing.T) {
	result := &model.ComparisonResult{
		ExecutiveSummary: "summary",
		Agreements:       []string{"a"},
		Disputes:         []string{},
		UniqueDoc1:       []string{},
		UniqueDoc2:       []string{},
	}

	tests := []struct {
		name       string
		body       string
		setupMocks func(m *serviceMocks.MockComparisonService)
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name: "success",
			body: `{"doc1Text":"contract A","doc2Text":"contract B"}`,
			setupMocks: func(m *serviceMocks.MockComparisonService) {
				m.On("Compare", mock.Anything, "contract A", "contract B").Return(result, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty document",
			body:       `{"doc1Text":"","doc2Text":"contract B"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
			wantError:  invalidInputMessage,
		},
		{
			name:       "missing document",
			body:       `{"doc1Text":"contract A"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "number instead of string",
			body:       `{"doc1Text":42,"doc2Text":"contract B"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "array body",
			body:       `["contract A","contract B"]`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "malformed json",
			body:       `{"doc1Text":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
			wantError:  invalidBodyMessage,
		},
		{
			name: "service error message passes through",
			body: `{"doc1Text":"a","doc2Text":"b"}`,
			setupMocks: func(m *serviceMocks.MockComparisonService) {
				m.On("Compare", mock.Anything, "a", "b").
					Return(nil, errors.New("Document 2 is not a contract.")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "COMPARISON_FAILED",
			wantError:  "Document 2 is not a contract.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(serviceMocks.MockComparisonService)
			if tt.setupMocks != nil {
				tt.setupMocks(svc)
			}
			app := newTestApp(Dependencies{Comparator: svc})

			resp, err := app.Test(compareRequest(tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			if tt.wantStatus == http.StatusOK {
				var got model.ComparisonResult
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
				assert.Equal(t, *result, got)
			} else {
				body := decodeError(t, resp)
				assert.Equal(t, tt.wantCode, body.Code)
				if tt.wantError != "" {
					assert.Equal(t, tt.wantError, body.Error)
				}
			}
			svc.AssertExpectations(t)
			if tt.setupMocks == nil {
				svc.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCompare_SuccessShape(t *testing.T) {
	gen := new(llmMocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(validModelOutput, nil)
	app := newTestApp(Dependencies{Comparator: instantService(gen)})

	resp, err := app.Test(compareRequest(`{"doc1Text":"bid one","doc2Text":"bid two"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.IsType(t, "", raw["executiveSummary"])
	for _, key := range []string{"agreements", "disputes", "uniqueDoc1", "uniqueDoc2"} {
		assert.IsType(t, []any{}, raw[key], key)
	}
	assert.NotContains(t, raw, "error")
}

func TestCompare_RetryExhaustion(t *testing.T) {
	gen := new(llmMocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("I cannot produce JSON today", nil)
	app := newTestApp(Dependencies{Comparator: instantService(gen)})

	resp, err := app.Test(compareRequest(`{"doc1Text":"a","doc2Text":"b"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Error, "AI response was not valid JSON")
	gen.AssertNumberOfCalls(t, "Generate", 3)
}

func TestCompare_RateLimit(t *testing.T) {
	gen := new(llmMocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(validModelOutput, nil)
	limiter := ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(48*time.Hour, 0), 5, 24*time.Hour, "test")
	app := newTestApp(Dependencies{Comparator: instantService(gen), Limiter: limiter})

	for i := 1; i <= 5; i++ {
		req := compareRequest(`{"doc1Text":"a","doc2Text":"b"}`)
		req.Header.Set("X-Forwarded-For", "198.51.100.23")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i)
	}

	req := compareRequest(`{"doc1Text":"a","doc2Text":"b"}`)
	req.Header.Set("X-Forwarded-For", "198.51.100.23, 10.0.0.1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Rate limit exceeded", decodeError(t, resp).Error)
	assert.Equal(t, "5", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	gen.AssertNumberOfCalls(t, "Generate", 5)
}

func TestCompare_MethodsAndCORS(t *testing.T) {
	svc := new(serviceMocks.MockComparisonService)
	app := newTestApp(Dependencies{Comparator: svc, CORSOrigin: "https://compare.example.com"})

	t.Run("preflight", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/api/compare", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "https://compare.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
		body, _ := io.ReadAll(resp.Body)
		assert.Empty(t, body)
	})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(method, "/api/compare", nil))
			require.NoError(t, err)

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Equal(t, "https://compare.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "Method Not Allowed", decodeError(t, resp).Error)
		})
	}
	svc.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything, mock.Anything)
}

func multipartFile(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestExtract(t *testing.T) {
	app := newTestApp(Dependencies{Extractor: extract.New()})

	t.Run("success", func(t *testing.T) {
		resp, err := app.Test(multipartFile(t, "terms.txt", []byte("Payment due in 30 days.")))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got model.ExtractionResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "terms.txt", got.Filename)
		assert.Equal(t, "txt", got.Format)
		assert.Equal(t, "Payment due in 30 days.", got.Text)
		assert.Equal(t, 23, got.Characters)
	})

	t.Run("no file", func(t *testing.T) {
		resp, err := app.Test(multipartFile(t, "", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		resp, err := app.Test(multipartFile(t, "scan.png", []byte{0x89, 'P', 'N', 'G'}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Unsupported file type. Please upload a .txt, .pdf, or .docx file.", decodeError(t, resp).Error)
	})

	t.Run("unreadable pdf", func(t *testing.T) {
		resp, err := app.Test(multipartFile(t, "broken.pdf", []byte("definitely not a pdf")))
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "PARSE_ERROR", body.Code)
		assert.True(t, strings.HasPrefix(body.Error, "Error parsing PDF file: "))
	})
}

func TestExportReport(t *testing.T) {
	reportBody := `{"result":{"executiveSummary":"s","agreements":["a"],"disputes":[],"uniqueDoc1":[],"uniqueDoc2":[]},"doc1Name":"a.pdf","doc2Name":"b.pdf","format":"TXT"}`

	t.Run("success", func(t *testing.T) {
		svc := new(serviceMocks.MockReportService)
		svc.On("Render", mock.Anything, mock.MatchedBy(func(r model.ReportRequest) bool {
			return r.Format == "txt" && r.Doc1Name == "a.pdf" && r.Result.Agreements[0] == "a"
		})).Return(&report.Document{
			Filename:    "Comparison_a_vs_b_2026-01-01.txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte("CONTRACT COMPARISON REPORT\n"),
		}, nil).Once()
		app := newTestApp(Dependencies{Reports: svc})

		req := httptest.NewRequest(http.MethodPost, "/api/reports/export", strings.NewReader(reportBody))
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Comparison_a_vs_b_2026-01-01.txt"`, resp.Header.Get("Content-Disposition"))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "CONTRACT COMPARISON REPORT\n", string(body))
		svc.AssertExpectations(t)
	})

	t.Run("invalid format", func(t *testing.T) {
		svc := new(serviceMocks.MockReportService)
		app := newTestApp(Dependencies{Reports: svc})

		req := httptest.NewRequest(http.MethodPost, "/api/reports/export", strings.NewReader(`{"format":"docx"}`))
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_REPORT_REQUEST", decodeError(t, resp).Code)
		svc.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	})
}

func TestPublishReport(t *testing.T) {
	reportBody := `{"result":{"executiveSummary":"s","agreements":[],"disputes":[],"uniqueDoc1":[],"uniqueDoc2":[]},"format":"pdf"}`

	tests := []struct {
		name       string
		setupMocks func(m *serviceMocks.MockReportService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			setupMocks: func(m *serviceMocks.MockReportService) {
				m.On("Publish", mock.Anything, mock.Anything).Return(&model.PublishedReport{
					Key:      "reports/0b0d.pdf",
					Filename: "Comparison_Document1_vs_Document2_2026-01-01.pdf",
					URL:      "https://minio.local/reports/0b0d.pdf?X-Amz-Signature=abc",
					Size:     2048,
				}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "storage disabled",
			setupMocks: func(m *serviceMocks.MockReportService) {
				m.On("Publish", mock.Anything, mock.Anything).Return(nil, service.ErrStorageDisabled).Once()
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "STORAGE_DISABLED",
		},
		{
			name: "storage failure is hidden",
			setupMocks: func(m *serviceMocks.MockReportService) {
				m.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("upload to storage: access denied")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(serviceMocks.MockReportService)
			tt.setupMocks(svc)
			app := newTestApp(Dependencies{Reports: svc})

			req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(reportBody))
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				body := decodeError(t, resp)
				assert.Equal(t, tt.wantCode, body.Code)
				assert.NotContains(t, body.Error, "access denied")
			} else {
				var got model.PublishedReport
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
				assert.Equal(t, "reports/0b0d.pdf", got.Key)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestRouting(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "canary_total", Help: "canary"}))
	app := newTestApp(Dependencies{Gatherer: reg})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Code)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "canary_total 0")
	})
}
