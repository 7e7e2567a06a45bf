package handler

import "testing"

func TestSnapshotContentType(t *testing.T) {
	if got := snapshotContentType("v1.pdf"); got != "application/pdf" {
		t.Errorf("snapshotContentType() = %q, want application/pdf", got)
	}
	if got := snapshotContentType("v1.txt"); got != "text/plain; charset=utf-8" {
		t.Errorf("snapshotContentType() = %q, want text/plain", got)
	}
}
