package reports

import (
	"fmt"
	"net/http"

	"github.com/loopplatform/merchant-pulse/api/responses"
	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

// ExportPerformance streams the performance report as a CSV attachment.
// Parameters are validated before the attachment headers go out, so
// client errors still produce a JSON response. Once the walk has flushed
// bytes to the client a failure can only surface as a truncated download.
func ExportPerformance(service reports.Service, logg *logger.Logger, defaults config.ReportsConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := parseExportParams(r, defaults)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filename := fmt.Sprintf("merchant-performance-%s.csv", timeNowUTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		sink := &countingWriter{dst: w}
		if err := service.ExportPerformanceCSV(ctx, params, sink); err != nil {
			if sink.n == 0 {
				w.Header().Del("Content-Disposition")
				responses.WriteError(ctx, logg, w, err)
				return
			}
			ctx = logg.WithField(ctx, "bytes_sent", sink.n)
			logg.Error(ctx, "csv export aborted mid-stream", err)
		}
	}
}

// countingWriter tracks whether any bytes reached the client so an early
// failure can still be reported as a normal error response.
type countingWriter struct {
	dst http.ResponseWriter
	n   int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.dst.Write(p)
	c.n += int64(n)
	return n, err
}
