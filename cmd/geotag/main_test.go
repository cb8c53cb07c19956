package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"geotag/internal/imagemeta"
	"geotag/internal/testsupport"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	configPath := filepath.Join(base, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`timeline_file = "` + filepath.Join(base, "timeline.json") + `"`,
		`log_dir = "` + filepath.Join(base, "logs") + `"`,
		`database_path = "` + filepath.Join(base, "gps.db") + `"`,
		"",
		"[logging]",
		`level = "error"`,
		`format = "json"`,
	}, "\n")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func writeTestIndex(t *testing.T, base string, images []*imagemeta.ImageMetadata) string {
	t.Helper()

	indexPath := filepath.Join(base, "index.json")
	if err := imagemeta.SaveIndex(imagemeta.NewIndex(images), indexPath); err != nil {
		t.Fatalf("save index: %v", err)
	}
	return indexPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestProcessCommandResolvesFromTimeline(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	testsupport.NewTimeline().
		Position("pixel", target.Add(-10*time.Minute), 40.0, -74.0).
		Position("pixel", target.Add(10*time.Minute), 40.1, -74.1).
		WriteFile(t, filepath.Join(base, "timeline.json"))

	stamp := target
	indexPath := writeTestIndex(t, base, []*imagemeta.ImageMetadata{{
		FilePath:          "/photos/a.jpg",
		FileName:          "a.jpg",
		Timestamp:         &stamp,
		HasValidTimestamp: true,
	}})

	out, err := runCommand(t, "--config", configPath, "process", "--index", indexPath, "--json")
	if err != nil {
		t.Fatalf("process: %v\n%s", err, out)
	}

	var payload struct {
		Stats struct {
			Processed int            `json:"processed"`
			Resolved  map[string]int `json:"resolvedBySource"`
		} `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if payload.Stats.Processed != 1 {
		t.Errorf("processed = %d, want 1", payload.Stats.Processed)
	}
	if payload.Stats.Resolved["timeline_interpolated"] != 1 {
		t.Errorf("resolved = %v, want one timeline_interpolated", payload.Stats.Resolved)
	}

	// The index write-back carries the resolved coordinates.
	idx, err := imagemeta.LoadIndex(indexPath)
	if err != nil {
		t.Fatalf("reload index: %v", err)
	}
	img := idx.Get("/photos/a.jpg")
	if img == nil || !img.HasGPSCoordinates {
		t.Fatal("index was not updated with resolved GPS")
	}
}

func TestTimelineValidateCommandReportsMissingFile(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCommand(t, "--config", configPath, "timeline", "validate", "--json")
	if err == nil {
		t.Fatalf("expected validation failure, got:\n%s", out)
	}
	if !strings.Contains(out, `"exists": false`) {
		t.Errorf("output missing existence flag:\n%s", out)
	}
}

func TestAugmentCommandCreatesPlaceholders(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	stamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	indexPath := writeTestIndex(t, base, []*imagemeta.ImageMetadata{{
		FilePath:          "/photos/a.jpg",
		FileName:          "a.jpg",
		Timestamp:         &stamp,
		HasValidTimestamp: true,
	}})

	out, err := runCommand(t, "--config", configPath, "augment", "--index", indexPath, "--json")
	if err != nil {
		t.Fatalf("augment: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"extensionPlaceholders": 1`) {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestConfigInitCommandWritesSample(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[interpolation]") {
		t.Error("sample config missing interpolation section")
	}

	// A second run without --overwrite refuses to clobber the file.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Error("expected overwrite refusal")
	}
}

func TestStoreClearRequiresForce(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	if _, err := runCommand(t, "--config", configPath, "store", "clear"); err == nil {
		t.Error("expected refusal without --force")
	}
	out, err := runCommand(t, "--config", configPath, "store", "clear", "--force")
	if err != nil {
		t.Fatalf("store clear --force: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Removed 0 records") {
		t.Errorf("unexpected output: %s", out)
	}
}
