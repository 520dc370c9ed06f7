package docModel

import "testing"

func TestUploadStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to UploadStatus
		allowed  bool
	}{
		{StatusPendingUpload, StatusProcessing, true},
		{StatusProcessing, StatusSuccess, true},
		{StatusProcessing, StatusFailed, true},
		{StatusPendingUpload, StatusSuccess, false},
		{StatusPendingUpload, StatusFailed, false},
		{StatusSuccess, StatusProcessing, false},
		{StatusSuccess, StatusFailed, false},
		{StatusFailed, StatusProcessing, false},
		{StatusFailed, StatusSuccess, false},
		{StatusProcessing, StatusPendingUpload, false},
	}

	for _, tc := range cases {
		got, err := tc.from.Transition(tc.to)
		if tc.allowed {
			if err != nil {
				t.Errorf("%s -> %s should be allowed, got %v", tc.from, tc.to, err)
			}
			if got != tc.to {
				t.Errorf("%s -> %s returned %s", tc.from, tc.to, got)
			}
		} else {
			if err == nil {
				t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
			}
			if got != tc.from {
				t.Errorf("rejected transition must keep the old status, got %s", got)
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	if StatusPendingUpload.Terminal() || StatusProcessing.Terminal() {
		t.Error("pending and processing are not terminal")
	}
	if !StatusSuccess.Terminal() || !StatusFailed.Terminal() {
		t.Error("success and failed are terminal")
	}
}

func TestParseUploadStatus(t *testing.T) {
	if _, err := ParseUploadStatus("PROCESSING"); err != nil {
		t.Errorf("known status rejected: %v", err)
	}
	if _, err := ParseUploadStatus("processing"); err == nil {
		t.Error("statuses are case sensitive")
	}
	if _, err := ParseUploadStatus("DONE"); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestParsePlan(t *testing.T) {
	if got := ParsePlan(""); got != PlanFree {
		t.Errorf("empty plan should default to free, got %s", got.Name)
	}
	if got := ParsePlan("pro"); got != PlanPro {
		t.Errorf("ParsePlan(pro) = %s", got.Name)
	}
	if got := ParsePlan("enterprise"); got != PlanFree {
		t.Errorf("unknown plan should fall back to free, got %s", got.Name)
	}
	if PlanFree.MaxPagesPerDoc >= PlanPro.MaxPagesPerDoc {
		t.Error("pro must allow more pages than free")
	}
}
