package cellar

import (
	"strings"
	"testing"
	"time"
)

// --- FormatSessionEvent tests ---

func TestFormatSessionEvent_StartedFermenting(t *testing.T) {
	e := FormatSessionEvent(DetectedEvent{
		Type:       EventPhaseChange,
		SessionID:  "brw-4f2a1",
		RecipeName: "Amber Ale",
		OldStatus:  "brewing",
		NewStatus:  "fermenting",
	})
	if e.Title != "Batch brw-4f2a1 started fermenting" {
		t.Errorf("title = %q, want %q", e.Title, "Batch brw-4f2a1 started fermenting")
	}
	if !strings.Contains(e.Body, "Amber Ale") {
		t.Errorf("body should contain recipe name, got %q", e.Body)
	}
	if !strings.Contains(e.Body, "brewing → fermenting") {
		t.Errorf("body should contain status transition, got %q", e.Body)
	}
	if e.Severity != "info" {
		t.Errorf("severity = %q, want %q", e.Severity, "info")
	}
	if e.Color != ColorInfo {
		t.Errorf("color = %q, want %q", e.Color, ColorInfo)
	}
}

func TestFormatSessionEvent_Completed(t *testing.T) {
	e := FormatSessionEvent(DetectedEvent{
		SessionID: "brw-4f2a1",
		OldStatus: "conditioning",
		NewStatus: "completed",
	})
	if e.Title != "Batch brw-4f2a1 completed" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Severity != "success" {
		t.Errorf("severity = %q, want success", e.Severity)
	}
	if e.Color != ColorSuccess {
		t.Errorf("color = %q, want %q", e.Color, ColorSuccess)
	}
}

func TestFormatSessionEvent_Stuck(t *testing.T) {
	e := FormatSessionEvent(DetectedEvent{
		SessionID: "brw-4f2a1",
		OldStatus: "fermenting",
		NewStatus: "stuck",
	})
	if e.Title != "Batch brw-4f2a1 marked stuck" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Severity != "warning" {
		t.Errorf("severity = %q, want warning", e.Severity)
	}
}

func TestFormatSessionEvent_Dumped(t *testing.T) {
	e := FormatSessionEvent(DetectedEvent{
		SessionID: "brw-4f2a1",
		OldStatus: "fermenting",
		NewStatus: "dumped",
	})
	if e.Title != "Batch brw-4f2a1 dumped" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Severity != "warning" {
		t.Errorf("severity = %q, want warning", e.Severity)
	}
}

func TestFormatSessionEvent_NewSessionNoOldStatus(t *testing.T) {
	e := FormatSessionEvent(DetectedEvent{
		SessionID:  "brw-4f2a1",
		RecipeName: "Amber Ale",
		NewStatus:  "planned",
	})
	if e.Title != "Batch brw-4f2a1 planned" {
		t.Errorf("title = %q", e.Title)
	}
	if strings.Contains(e.Body, "→") {
		t.Errorf("body should not contain transition arrow for a new session, got %q", e.Body)
	}
}

func TestFormatSessionEvent_Fields(t *testing.T) {
	e := FormatSessionEvent(DetectedEvent{
		SessionID:  "brw-4f2a1",
		RecipeName: "Amber Ale",
		OldStatus:  "brewing",
		NewStatus:  "fermenting",
	})
	names := map[string]string{}
	for _, f := range e.Fields {
		names[f.Name] = f.Value
	}
	if names["Batch"] != "brw-4f2a1" {
		t.Errorf("Batch field = %q, want %q", names["Batch"], "brw-4f2a1")
	}
	if names["Status"] != "fermenting" {
		t.Errorf("Status field = %q, want %q", names["Status"], "fermenting")
	}
	if names["Recipe"] != "Amber Ale" {
		t.Errorf("Recipe field = %q, want %q", names["Recipe"], "Amber Ale")
	}
}

func TestFormatSessionEvent_NoRecipeField(t *testing.T) {
	e := FormatSessionEvent(DetectedEvent{
		SessionID: "brw-4f2a1",
		NewStatus: "brewing",
	})
	for _, f := range e.Fields {
		if f.Name == "Recipe" {
			t.Error("should not include Recipe field when recipe name is empty")
		}
	}
}

// --- FormatStuckEvent tests ---

func TestFormatStuckEvent_Basics(t *testing.T) {
	e := FormatStuckEvent(DetectedEvent{
		Type:       EventStuckFermentation,
		SessionID:  "brw-4f2a1",
		RecipeName: "Saison",
		Gravity:    1.024,
		Window:     75 * time.Hour,
	})
	if e.Title != "Fermentation stuck on batch brw-4f2a1" {
		t.Errorf("title = %q", e.Title)
	}
	if !strings.Contains(e.Body, "Saison") {
		t.Errorf("body should contain recipe name, got %q", e.Body)
	}
	if !strings.Contains(e.Body, "1.024") {
		t.Errorf("body should contain gravity, got %q", e.Body)
	}
	if !strings.Contains(e.Body, "3d 3h") {
		t.Errorf("body should contain stall duration, got %q", e.Body)
	}
	if e.Severity != "warning" {
		t.Errorf("severity = %q, want warning", e.Severity)
	}
	if e.Color != ColorWarning {
		t.Errorf("color = %q, want %q", e.Color, ColorWarning)
	}
}

func TestFormatStuckEvent_Fields(t *testing.T) {
	e := FormatStuckEvent(DetectedEvent{
		SessionID:  "brw-4f2a1",
		RecipeName: "Saison",
		Gravity:    1.024,
		Window:     72 * time.Hour,
	})
	names := map[string]string{}
	for _, f := range e.Fields {
		names[f.Name] = f.Value
	}
	if names["Gravity"] != "1.024" {
		t.Errorf("Gravity field = %q, want %q", names["Gravity"], "1.024")
	}
	if names["Stalled"] != "3d 0h" {
		t.Errorf("Stalled field = %q, want %q", names["Stalled"], "3d 0h")
	}
	if names["Recipe"] != "Saison" {
		t.Errorf("Recipe field = %q, want %q", names["Recipe"], "Saison")
	}
}

// --- FormatTempEvent tests ---

func TestFormatTempEvent_TooWarm(t *testing.T) {
	e := FormatTempEvent(DetectedEvent{
		Type:        EventTempOutOfRange,
		SessionID:   "brw-4f2a1",
		RecipeName:  "Pale Ale",
		Kind:        AlertTempHigh,
		Temperature: 78.5,
		MinTemp:     64,
		MaxTemp:     72,
		YeastName:   "SafAle US-05",
	})
	if e.Title != "Batch brw-4f2a1 is too warm" {
		t.Errorf("title = %q", e.Title)
	}
	if !strings.Contains(e.Body, "78.5°F") {
		t.Errorf("body should contain temperature, got %q", e.Body)
	}
	if !strings.Contains(e.Body, "64-72°F") {
		t.Errorf("body should contain the yeast range, got %q", e.Body)
	}
	if !strings.Contains(e.Body, "SafAle US-05") {
		t.Errorf("body should contain yeast name, got %q", e.Body)
	}
	if e.Severity != "warning" {
		t.Errorf("severity = %q, want warning", e.Severity)
	}
}

func TestFormatTempEvent_TooCold(t *testing.T) {
	e := FormatTempEvent(DetectedEvent{
		SessionID:   "brw-4f2a1",
		Kind:        AlertTempLow,
		Temperature: 58,
		MinTemp:     64,
		MaxTemp:     72,
	})
	if e.Title != "Batch brw-4f2a1 is too cold" {
		t.Errorf("title = %q", e.Title)
	}
}

func TestFormatTempEvent_Fields(t *testing.T) {
	e := FormatTempEvent(DetectedEvent{
		SessionID:   "brw-4f2a1",
		Kind:        AlertTempHigh,
		Temperature: 78.5,
		MinTemp:     64,
		MaxTemp:     72,
		YeastName:   "SafAle US-05",
	})
	names := map[string]string{}
	for _, f := range e.Fields {
		names[f.Name] = f.Value
	}
	if names["Temp"] != "78.5°F" {
		t.Errorf("Temp field = %q, want %q", names["Temp"], "78.5°F")
	}
	if names["Range"] != "64-72°F" {
		t.Errorf("Range field = %q, want %q", names["Range"], "64-72°F")
	}
	if names["Yeast"] != "SafAle US-05" {
		t.Errorf("Yeast field = %q, want %q", names["Yeast"], "SafAle US-05")
	}
}

// --- FormatPulse tests ---

func TestFormatPulse_BasicStatus(t *testing.T) {
	e := FormatPulse(activeStatusInfo())
	if e.Title != "Cellar Pulse" {
		t.Errorf("title = %q, want 'Cellar Pulse'", e.Title)
	}
	if !strings.Contains(e.Body, "2 active (1 fermenting, 1 conditioning)") {
		t.Errorf("body = %q, want batch counts", e.Body)
	}
	if !strings.Contains(e.Body, "brw-00001 Amber Ale: fermenting") {
		t.Errorf("body = %q, want per-session line", e.Body)
	}
	if !strings.Contains(e.Body, "SG 1.020") {
		t.Errorf("body = %q, want latest gravity", e.Body)
	}
	if !strings.Contains(e.Body, "(55% attenuated)") {
		t.Errorf("body = %q, want attenuation", e.Body)
	}
	if e.Severity != "info" {
		t.Errorf("severity = %q, want info", e.Severity)
	}
}

func TestFormatPulse_EmptyStatus(t *testing.T) {
	e := FormatPulse(&StatusInfo{})
	if !strings.Contains(e.Body, "0 active") {
		t.Errorf("body = %q, want zero counts", e.Body)
	}
}

func TestFormatPulse_StuckFieldIncluded(t *testing.T) {
	info := &StatusInfo{
		Sessions: []SessionStatus{
			{ID: "brw-1", Status: "stuck", RecipeName: "Saison"},
		},
	}
	e := FormatPulse(info)
	found := false
	for _, f := range e.Fields {
		if f.Name == "Stuck" && f.Value == "1" {
			found = true
		}
	}
	if !found {
		t.Error("expected Stuck field when a batch is stuck")
	}
}

func TestFormatPulse_NoStuckFieldWhenZero(t *testing.T) {
	e := FormatPulse(activeStatusInfo())
	for _, f := range e.Fields {
		if f.Name == "Stuck" {
			t.Error("should not include Stuck field when nothing is stuck")
		}
	}
}

// --- severity and phase helpers ---

func TestSeverityColor_AllValues(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{"success", ColorSuccess},
		{"info", ColorInfo},
		{"warning", ColorWarning},
		{"error", ColorError},
		{"unknown", ColorInfo},
	}
	for _, tt := range tests {
		got := severityColor(tt.severity)
		if got != tt.want {
			t.Errorf("severityColor(%q) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestPhaseVerb_AllStatuses(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"planned", "planned"},
		{"brewing", "started brewing"},
		{"fermenting", "started fermenting"},
		{"stuck", "marked stuck"},
		{"conditioning", "moved to conditioning"},
		{"completed", "completed"},
		{"dumped", "dumped"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		got := phaseVerb(tt.status)
		if got != tt.want {
			t.Errorf("phaseVerb(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestPhaseSeverity_AllStatuses(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"completed", "success"},
		{"stuck", "warning"},
		{"dumped", "warning"},
		{"planned", "info"},
		{"brewing", "info"},
		{"fermenting", "info"},
		{"conditioning", "info"},
	}
	for _, tt := range tests {
		got := phaseSeverity(tt.status)
		if got != tt.want {
			t.Errorf("phaseSeverity(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
