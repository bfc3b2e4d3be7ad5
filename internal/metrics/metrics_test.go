package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/joseph-ayodele/docfields/internal/common"
)

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{fmt.Errorf("open: %w", common.ErrUnsupportedFormat), "unsupported_format"},
		{common.ErrEmptyDocument, "empty_document"},
		{common.NewAppError("BAD", "x", common.ErrInvalidInput), "invalid_input"},
		{context.DeadlineExceeded, "internal"},
	}
	for _, tc := range tests {
		if got := ErrorType(tc.err); got != tc.want {
			t.Errorf("ErrorType(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	UpdateSystemMetrics()
	if got := testutil.ToFloat64(SystemGoroutines); got < 1 {
		t.Errorf("SystemGoroutines = %v, want >= 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	DocumentsProcessed.WithLabelValues("TXT", "OK").Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"docfields_documents_processed_total", "docfields_system_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
