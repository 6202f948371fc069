package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
)

func TestReportValidate(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		req  ReportRequest
	}{
		{"missing type", ReportRequest{From: "2025-03-01", To: "2025-03-31"}},
		{"unknown type", ReportRequest{Type: "mentors", From: "2025-03-01", To: "2025-03-31"}},
		{"bad from", ReportRequest{Type: ReportGrassroot, From: "03/01/2025", To: "2025-03-31"}},
		{"reversed", ReportRequest{Type: ReportGrassroot, From: "2025-03-31", To: "2025-03-01"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.registry.Reports.Validate(tc.req)
			assertErrorIs(t, err, ErrValidation)
		})
	}

	from, to, err := f.registry.Reports.Validate(ReportRequest{Type: ReportChallenges, From: "2025-03-01", To: "2025-03-01"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if to.Sub(from).Hours() != 24 {
		t.Fatalf("expected an inclusive one-day window, got %v", to.Sub(from))
	}
}

func TestExportGrassrootReport(t *testing.T) {
	f := newFixture(t)
	f.submitIdea(t)

	var buf bytes.Buffer
	req := ReportRequest{Type: ReportGrassroot, From: "2025-03-01", To: "2025-03-01"}
	if err := f.registry.Reports.Export(context.Background(), &buf, req); err != nil {
		t.Fatalf("export: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and 1 row, got %d records", len(records))
	}
	if records[0][0] != "Ideator" || records[0][3] != "Status" {
		t.Fatalf("unexpected header %v", records[0])
	}
	row := records[1]
	if row[0] != "Ida Ideator" || row[3] != "Submitted to Reporting Manager" {
		t.Fatalf("unexpected row %v", row)
	}
	if !strings.HasPrefix(row[5], "Automate the monthly") {
		t.Fatalf("unexpected idea text %q", row[5])
	}
	if req.Filename() != "grassroot_report_2025-03-01_to_2025-03-01.csv" {
		t.Fatalf("unexpected filename %s", req.Filename())
	}
}

func TestExportChallengeReportRespectsRange(t *testing.T) {
	f := newFixture(t)
	f.createDraft(t)

	var buf bytes.Buffer
	if err := f.registry.Reports.Export(context.Background(), &buf, ReportRequest{Type: ReportChallenges, From: "2025-02-01", To: "2025-02-28"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected only the header outside the range, got %d records", len(records))
	}

	buf.Reset()
	if err := f.registry.Reports.Export(context.Background(), &buf, ReportRequest{Type: ReportChallenges, From: "2025-03-01", To: "2025-03-31"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	records, _ = csv.NewReader(&buf).ReadAll()
	if len(records) != 2 || records[1][0] != "Reduce onboarding time" || records[1][4] != "Olga Owner" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.submitIdea(t)
	ch := f.createDraft(t)
	f.addPanel(t, ch.ChallengeID, 1, "Panel")

	stats, err := f.registry.Dashboard.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Members != 6 || stats.Ideas != 1 || stats.LiveChallenges != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	if _, err := f.registry.Challenges.Finalize(ctx, f.owner, ch.ChallengeID); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	stats, _ = f.registry.Dashboard.Stats(ctx)
	if stats.LiveChallenges != 1 {
		t.Fatalf("expected 1 live challenge, got %d", stats.LiveChallenges)
	}
	active, err := f.registry.Dashboard.ActiveChallenges(ctx)
	if err != nil || len(active) != 1 {
		t.Fatalf("expected 1 active challenge, got %d (%v)", len(active), err)
	}
}
