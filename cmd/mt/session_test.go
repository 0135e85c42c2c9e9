package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestSessionCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"session", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("session --help failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "brew day through fermentation") {
		t.Errorf("expected help to describe the session lifecycle, got: %s", out)
	}
	for _, sub := range []string{"start", "list", "show", "log", "set-status", "finish"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q subcommand, got: %s", sub, out)
		}
	}
}

func TestNewSessionCmd(t *testing.T) {
	cmd := newSessionCmd()
	if cmd.Use != "session" {
		t.Errorf("Use = %q, want %q", cmd.Use, "session")
	}
	if len(cmd.Aliases) != 1 || cmd.Aliases[0] != "brew" {
		t.Errorf("Aliases = %v, want [brew]", cmd.Aliases)
	}
	if !cmd.HasSubCommands() {
		t.Error("session command should have subcommands")
	}
}

func TestNewSessionLogCmd(t *testing.T) {
	cmd := newSessionLogCmd()
	if cmd.Use != "log <id>" {
		t.Errorf("Use = %q, want %q", cmd.Use, "log <id>")
	}
	for _, name := range []string{"gravity", "temp", "temp-unit", "source", "config"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag", name)
		}
	}
}

func TestSessionLogCmd_MissingRequiredFlags(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	// Missing --gravity
	cmd.SetArgs([]string{"session", "log", "brw-xxxxx"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing required flags")
	}
}

func TestSessionStartCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"session", "start", "rcp-xxxxx", "--config", "/nonexistent/mashtun.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

// testRecipeWithYeast builds a 5 gal recipe whose vitals land on OG 1.053 and
// FG 1.010: 10 lb Pale 2-Row at 72% efficiency plus a US-05 package.
func testRecipeWithYeast(t *testing.T, cfgPath string) string {
	t.Helper()
	out, err := runCLI("recipe", "create", "--config", cfgPath, "--name", "House Pale")
	if err != nil {
		t.Fatalf("recipe create failed: %v", err)
	}
	id := extractID(t, out, "rcp-")
	for _, args := range [][]string{
		{"--ingredient", "ing-9d01a", "--amount", "10"},
		{"--ingredient", "ing-35a7e", "--amount", "1"},
	} {
		full := append([]string{"recipe", "ingredient", "add", id, "--config", cfgPath}, args...)
		if _, err := runCLI(full...); err != nil {
			t.Fatalf("recipe ingredient add failed: %v", err)
		}
	}
	return id
}

func TestSessionLifecycle(t *testing.T) {
	cfgPath := brewhouseConfig(t)
	recipeID := testRecipeWithYeast(t, cfgPath)

	out, err := runCLI("session", "start", recipeID, "--config", cfgPath, "--notes", "first runthrough")
	if err != nil {
		t.Fatalf("session start failed: %v", err)
	}
	if !strings.Contains(out, "Started session brw-") {
		t.Errorf("expected start confirmation, got: %s", out)
	}
	if !strings.Contains(out, "Planned OG: 1.053") {
		t.Errorf("expected planned OG from the recipe snapshot, got: %s", out)
	}
	id := extractID(t, out, "brw-")

	out, err = runCLI("session", "list", "--config", cfgPath, "--recipe", recipeID)
	if err != nil {
		t.Fatalf("session list failed: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "planned") {
		t.Errorf("expected new session in list, got: %s", out)
	}

	// Readings only make sense once wort exists.
	_, err = runCLI("session", "log", id, "--config", cfgPath, "--gravity", "1.053")
	if err == nil {
		t.Fatal("expected error logging a reading while planned")
	}
	if !strings.Contains(err.Error(), "cannot log a reading") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "cannot log a reading")
	}

	out, err = runCLI("session", "set-status", id, "brewing", "--config", cfgPath)
	if err != nil {
		t.Fatalf("session set-status failed: %v", err)
	}
	if !strings.Contains(out, "Session "+id+" is now brewing") {
		t.Errorf("expected transition confirmation, got: %s", out)
	}

	// The first reading becomes the measured OG.
	out, err = runCLI("session", "log", id, "--config", cfgPath, "--gravity", "1.053")
	if err != nil {
		t.Fatalf("session log failed: %v", err)
	}
	if !strings.Contains(out, "Logged 1.053 for "+id) {
		t.Errorf("expected log confirmation, got: %s", out)
	}

	if _, err := runCLI("session", "set-status", id, "fermenting", "--config", cfgPath); err != nil {
		t.Fatalf("session set-status failed: %v", err)
	}
	if _, err := runCLI("session", "log", id, "--config", cfgPath,
		"--gravity", "1.020", "--temp", "68"); err != nil {
		t.Fatalf("session log failed: %v", err)
	}

	out, err = runCLI("session", "show", "--config", cfgPath, id)
	if err != nil {
		t.Fatalf("session show failed: %v", err)
	}
	for _, want := range []string{
		"Recipe:       House Pale (" + recipeID + ")",
		"Status:       fermenting",
		"Planned OG:   1.053",
		"Measured OG:  1.053",
		"Yeast:        ing-35a7e",
		"Fermentation:",
		"Current:      1.020",
		"Attenuation:  62.3%",
		"Target FG:    1.010",
		"Readings:     2",
		"68 °F",
		"manual",
		"first runthrough",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected show output to contain %q, got: %s", want, out)
		}
	}

	// Regressions like planned are off the table mid-fermentation.
	_, err = runCLI("session", "set-status", id, "planned", "--config", cfgPath)
	if err == nil {
		t.Fatal("expected error for invalid status transition")
	}
	if !strings.Contains(err.Error(), "invalid status transition") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "invalid status transition")
	}

	out, err = runCLI("session", "finish", id, "--config", cfgPath, "--fg", "1.010")
	if err != nil {
		t.Fatalf("session finish failed: %v", err)
	}
	if !strings.Contains(out, "Completed session "+id) {
		t.Errorf("expected finish confirmation, got: %s", out)
	}
	if !strings.Contains(out, "Apparent attenuation: 81.1%") {
		t.Errorf("expected apparent attenuation, got: %s", out)
	}

	out, err = runCLI("session", "show", "--config", cfgPath, id)
	if err != nil {
		t.Fatalf("session show failed: %v", err)
	}
	for _, want := range []string{"Status:       completed", "Measured FG:  1.010", "Completed:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected show output to contain %q, got: %s", want, out)
		}
	}
}

func TestSessionLog_GravityBounds(t *testing.T) {
	cfgPath := brewhouseConfig(t)
	recipeID := testRecipeWithYeast(t, cfgPath)

	out, err := runCLI("session", "start", recipeID, "--config", cfgPath)
	if err != nil {
		t.Fatalf("session start failed: %v", err)
	}
	id := extractID(t, out, "brw-")
	if _, err := runCLI("session", "set-status", id, "brewing", "--config", cfgPath); err != nil {
		t.Fatalf("session set-status failed: %v", err)
	}

	_, err = runCLI("session", "log", id, "--config", cfgPath, "--gravity", "2.0")
	if err == nil {
		t.Fatal("expected error for absurd gravity")
	}
	if !strings.Contains(err.Error(), "gravity must be in") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "gravity must be in")
	}
}

func TestSessionStart_EmptyRecipe(t *testing.T) {
	cfgPath := brewhouseConfig(t)

	out, err := runCLI("recipe", "create", "--config", cfgPath, "--name", "Blank Slate")
	if err != nil {
		t.Fatalf("recipe create failed: %v", err)
	}
	recipeID := extractID(t, out, "rcp-")

	// A recipe with no snapshot gets one computed on the spot.
	out, err = runCLI("session", "start", recipeID, "--config", cfgPath)
	if err != nil {
		t.Fatalf("session start failed: %v", err)
	}
	if !strings.Contains(out, "Planned OG: 1.000") {
		t.Errorf("expected a computed planned OG, got: %s", out)
	}
}

func TestSessionList_Empty(t *testing.T) {
	cfgPath := brewhouseConfig(t)

	out, err := runCLI("session", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("session list failed: %v", err)
	}
	if !strings.Contains(out, "No sessions found.") {
		t.Errorf("expected empty-list message, got: %s", out)
	}
}
