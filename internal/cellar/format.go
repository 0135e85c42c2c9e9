package cellar

import (
	"fmt"
	"strings"
)

// Color constants for event severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// severityColor maps a severity string to a sidebar color.
func severityColor(severity string) string {
	switch severity {
	case "success":
		return ColorSuccess
	case "info":
		return ColorInfo
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}

// phaseVerb returns a human-friendly verb for a session status transition.
func phaseVerb(newStatus string) string {
	switch newStatus {
	case "planned":
		return "planned"
	case "brewing":
		return "started brewing"
	case "fermenting":
		return "started fermenting"
	case "stuck":
		return "marked stuck"
	case "conditioning":
		return "moved to conditioning"
	case "completed":
		return "completed"
	case "dumped":
		return "dumped"
	default:
		return newStatus
	}
}

// phaseSeverity returns the appropriate severity for a session status.
func phaseSeverity(newStatus string) string {
	switch newStatus {
	case "completed":
		return "success"
	case "stuck", "dumped":
		return "warning"
	default:
		return "info"
	}
}

// FormatSessionEvent formats a session phase change event.
func FormatSessionEvent(event DetectedEvent) FormattedEvent {
	verb := phaseVerb(event.NewStatus)
	severity := phaseSeverity(event.NewStatus)

	title := fmt.Sprintf("Batch %s %s", event.SessionID, verb)

	var bodyParts []string
	if event.RecipeName != "" {
		bodyParts = append(bodyParts, event.RecipeName)
	}
	if event.OldStatus != "" {
		bodyParts = append(bodyParts, fmt.Sprintf("%s → %s", event.OldStatus, event.NewStatus))
	}
	body := strings.Join(bodyParts, "\n")

	fields := []Field{
		{Name: "Batch", Value: event.SessionID, Short: true},
		{Name: "Status", Value: event.NewStatus, Short: true},
	}
	if event.RecipeName != "" {
		fields = append(fields, Field{Name: "Recipe", Value: event.RecipeName, Short: true})
	}

	return FormattedEvent{
		Title:    title,
		Body:     body,
		Severity: severity,
		Color:    severityColor(severity),
		Fields:   fields,
	}
}

// FormatStuckEvent formats a stuck fermentation event.
func FormatStuckEvent(event DetectedEvent) FormattedEvent {
	title := fmt.Sprintf("Fermentation stuck on batch %s", event.SessionID)

	var bodyParts []string
	if event.RecipeName != "" {
		bodyParts = append(bodyParts, event.RecipeName)
	}
	bodyParts = append(bodyParts, fmt.Sprintf("Gravity held at %.3f for %s",
		event.Gravity, formatDuration(event.Window)))
	body := strings.Join(bodyParts, "\n")

	fields := []Field{
		{Name: "Batch", Value: event.SessionID, Short: true},
		{Name: "Gravity", Value: fmt.Sprintf("%.3f", event.Gravity), Short: true},
		{Name: "Stalled", Value: formatDuration(event.Window), Short: true},
	}
	if event.RecipeName != "" {
		fields = append(fields, Field{Name: "Recipe", Value: event.RecipeName, Short: true})
	}

	return FormattedEvent{
		Title:    title,
		Body:     body,
		Severity: "warning",
		Color:    ColorWarning,
		Fields:   fields,
	}
}

// FormatTempEvent formats an out-of-range temperature event.
func FormatTempEvent(event DetectedEvent) FormattedEvent {
	direction := "too warm"
	if event.Kind == AlertTempLow {
		direction = "too cold"
	}
	title := fmt.Sprintf("Batch %s is %s", event.SessionID, direction)

	var bodyParts []string
	if event.RecipeName != "" {
		bodyParts = append(bodyParts, event.RecipeName)
	}
	bodyParts = append(bodyParts, fmt.Sprintf("%.1f°F is outside the %s range (%.0f-%.0f°F)",
		event.Temperature, event.YeastName, event.MinTemp, event.MaxTemp))
	body := strings.Join(bodyParts, "\n")

	fields := []Field{
		{Name: "Batch", Value: event.SessionID, Short: true},
		{Name: "Temp", Value: fmt.Sprintf("%.1f°F", event.Temperature), Short: true},
		{Name: "Range", Value: fmt.Sprintf("%.0f-%.0f°F", event.MinTemp, event.MaxTemp), Short: true},
	}
	if event.YeastName != "" {
		fields = append(fields, Field{Name: "Yeast", Value: event.YeastName, Short: true})
	}

	return FormattedEvent{
		Title:    title,
		Body:     body,
		Severity: "warning",
		Color:    ColorWarning,
		Fields:   fields,
	}
}

// FormatPulse formats a status pulse digest from cellar status info.
func FormatPulse(info *StatusInfo) FormattedEvent {
	var brewing, fermenting, stuck, conditioning int
	for _, s := range info.Sessions {
		switch s.Status {
		case "brewing":
			brewing++
		case "fermenting":
			fermenting++
		case "stuck":
			stuck++
		case "conditioning":
			conditioning++
		}
	}
	active := brewing + fermenting + stuck + conditioning

	var bodyLines []string
	bodyLines = append(bodyLines, fmt.Sprintf("**Batches**: %d active (%d fermenting, %d conditioning)",
		active, fermenting, conditioning))
	for _, s := range info.Sessions {
		line := fmt.Sprintf("  %s %s: %s", s.ID, s.RecipeName, s.Status)
		if s.LatestGravity > 0 {
			line += fmt.Sprintf(", SG %.3f", s.LatestGravity)
		}
		if s.Attenuation > 0 {
			line += fmt.Sprintf(" (%.0f%% attenuated)", s.Attenuation)
		}
		bodyLines = append(bodyLines, line)
	}
	body := strings.Join(bodyLines, "\n")

	fields := []Field{
		{Name: "Active", Value: fmt.Sprintf("%d", active), Short: true},
		{Name: "Fermenting", Value: fmt.Sprintf("%d", fermenting), Short: true},
		{Name: "Conditioning", Value: fmt.Sprintf("%d", conditioning), Short: true},
	}
	if stuck > 0 {
		fields = append(fields, Field{Name: "Stuck", Value: fmt.Sprintf("%d", stuck), Short: true})
	}
	if brewing > 0 {
		fields = append(fields, Field{Name: "Brewing", Value: fmt.Sprintf("%d", brewing), Short: true})
	}

	return FormattedEvent{
		Title:    "Cellar Pulse",
		Body:     body,
		Severity: "info",
		Color:    ColorInfo,
		Fields:   fields,
	}
}
