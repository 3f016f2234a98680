package dns

import "testing"

func TestLatestRejectsStaleSummaries(t *testing.T) {
	var latest Latest
	if latest.Current() != "" || latest.IsCurrent("") {
		t.Fatalf("no session should be active yet")
	}

	first := latest.Begin()
	second := latest.Begin()
	if first == second {
		t.Fatalf("session IDs must be unique")
	}
	if latest.IsCurrent(first) || !latest.IsCurrent(second) {
		t.Fatalf("only the newest session should be current")
	}

	if latest.Commit(&CheckSummary{SessionID: first}) {
		t.Fatalf("stale summary was accepted")
	}
	if latest.Summary() != nil {
		t.Fatalf("stale summary leaked into state")
	}

	fresh := &CheckSummary{SessionID: second, Domain: "example.com"}
	if !latest.Commit(fresh) || latest.Summary() != fresh {
		t.Fatalf("current summary was rejected")
	}

	latest.Begin()
	if latest.Summary() != nil {
		t.Fatalf("Begin should clear the previous summary")
	}
}
