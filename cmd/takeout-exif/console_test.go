package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fpang/takeout-exif/internal/pipeline"
)

func TestConsoleObserve(t *testing.T) {
	tests := []struct {
		name    string
		result  pipeline.Result
		wantOut string
		wantErr string
	}{
		{
			name:    "updated",
			result:  pipeline.Result{Sidecar: "/t/a.jpg.supplemental-metadata.json", Media: "/t/a.jpg", Status: pipeline.StatusUpdated},
			wantOut: "Updated: /t/a.jpg.supplemental-metadata.json\n",
		},
		{
			name:    "skipped",
			result:  pipeline.Result{Sidecar: "/t/a.jpg.supplemental-metadata.json", Media: "/t/a.jpg", Status: pipeline.StatusSkipped},
			wantOut: "Skipped (already has EXIF date): /t/a.jpg.supplemental-metadata.json\n",
		},
		{
			name:    "would update",
			result:  pipeline.Result{Sidecar: "/t/a.jpg.supplemental-metadata.json", Media: "/t/a.jpg", Status: pipeline.StatusWouldUpdate, DateTime: "2017:11:23 23:34:26"},
			wantOut: "Would update: /t/a.jpg.supplemental-metadata.json -> 2017:11:23 23:34:26\n",
		},
		{
			name: "failed",
			result: pipeline.Result{
				Sidecar: "/t/b.jpg.supplemental-metadata.json",
				Status:  pipeline.StatusFailed,
				Err:     errors.New("media file not found: /t/b.jpg"),
			},
			wantErr: "Error processing /t/b.jpg.supplemental-metadata.json: media file not found: /t/b.jpg\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut strings.Builder
			newConsole(&out, &errOut).Observe(tt.result)

			if out.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", out.String(), tt.wantOut)
			}
			if errOut.String() != tt.wantErr {
				t.Errorf("stderr = %q, want %q", errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	var b strings.Builder
	printSummary(&b, pipeline.Summary{Found: 5, Updated: 2, Skipped: 2, Errors: 1, Elapsed: 65 * time.Second}, false, 0)

	got := b.String()
	for _, want := range []string{
		"Summary:\n  Metadata files found: 5\n  Media files updated: 2\n  Errors: 1\n",
		"Already dated (skipped): 2",
		"Elapsed: 1:05",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Would update") {
		t.Errorf("non-dry-run summary mentions dry run:\n%s", got)
	}
}

func TestPrintSummaryDryRun(t *testing.T) {
	var b strings.Builder
	printSummary(&b, pipeline.Summary{Found: 3}, true, 3)

	if !strings.Contains(b.String(), "Would update (dry run): 3") {
		t.Errorf("summary = %q", b.String())
	}
}
