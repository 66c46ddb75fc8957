package clever

// file: internal/clever/diagnostics.go

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/fetch"
	"golang.org/x/sync/errgroup"
)

// DiagnosticResult is the outcome of probing one remote endpoint.
type DiagnosticResult struct {
	Name       string        // Endpoint label.
	URL        string        // URL that was requested.
	Success    bool          // Reached the server and got a non-error status.
	StatusCode int           // 0 when the request never completed.
	Bytes      int           // Size of the response body.
	Error      error         // Transport error, if any.
	Duration   time.Duration // Round-trip time.
}

// probeMarkdownTarget is converted through the markdown proxy during checks.
const probeMarkdownTarget = "https://www.clever-cloud.com/"

// PerformConnectivityCheck probes the three remote endpoints concurrently.
// Results are returned in a fixed order. The error is non-nil if any probe hit
// a transport failure; error statuses are reported but are not failures of the check.
func (s *Service) PerformConnectivityCheck(ctx context.Context) ([]DiagnosticResult, error) {
	probes := []struct {
		name string
		url  string
		call func(context.Context) (*fetch.Response, error)
	}{
		{endpointZones, s.client.zonesURL, s.client.GetZones},
		{endpointDocs, s.client.docsURL, s.client.GetDocURLs},
		{endpointMarkdown, s.client.MarkdownURL(probeMarkdownTarget), func(ctx context.Context) (*fetch.Response, error) {
			return s.client.FetchWebpageMarkdown(ctx, probeMarkdownTarget)
		}},
	}

	results := make([]DiagnosticResult, len(probes))
	// A plain group: one failing probe must not cancel the others.
	var g errgroup.Group
	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			start := time.Now()
			resp, err := p.call(ctx)
			res := DiagnosticResult{Name: p.name, URL: p.url, Duration: time.Since(start)}
			if err != nil {
				res.Error = err
				results[i] = res
				return errors.Wrapf(err, "%s endpoint unreachable", p.name)
			}
			res.StatusCode = resp.StatusCode
			res.Bytes = len(resp.Body)
			res.Success = resp.StatusCode < http.StatusBadRequest
			results[i] = res
			return nil
		})
	}
	err := g.Wait()

	for _, r := range results {
		s.logger.Info("Connectivity probe finished.", "endpoint", r.Name, "status", r.StatusCode, "success", r.Success, "duration", r.Duration)
	}
	return results, err
}

// FormatDiagnosticResult renders one result as a single status line.
func FormatDiagnosticResult(r DiagnosticResult) string {
	status := "PASS"
	detail := fmt.Sprintf("HTTP %d, %d bytes", r.StatusCode, r.Bytes)
	switch {
	case r.Error != nil:
		status = "FAIL"
		detail = r.Error.Error()
		if len(detail) > 80 {
			detail = detail[:80] + "..."
		}
	case !r.Success:
		status = "WARN"
	}
	return fmt.Sprintf("%-4s %-10s %8s  %s (%s)", status, r.Name, r.Duration.Round(time.Millisecond), r.URL, detail)
}
