package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig creates a config file using the given driver in a temp dir
func writeConfig(t *testing.T, driver string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`storage:
  driver: %s
  data_dir: %s
logging:
  level: disabled
  file: ""
`, driver, filepath.Join(dir, "data"))

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// run executes one command line and returns its output
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

// countOf finds the COUNT column of a phrase in list output
func countOf(list, text string) string {
	for _, line := range strings.Split(list, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[2] == text {
			return fields[1]
		}
	}
	return ""
}

func TestCountAndSave(t *testing.T) {
	for _, driver := range []string{"file", "bolt"} {
		t.Run(driver, func(t *testing.T) {
			cfg := writeConfig(t, driver)

			if out := mustRun(t, cfg, "add", "coffee"); !strings.Contains(out, `"coffee" [c]`) {
				t.Errorf("add output = %q", out)
			}
			mustRun(t, cfg, "add", "meeting")

			if out := mustRun(t, cfg, "press", "ccc"); !strings.Contains(out, "3 increments") {
				t.Errorf("press output = %q", out)
			}

			list := mustRun(t, cfg, "list")
			if got := countOf(list, "coffee"); got != "3" {
				t.Errorf("coffee count = %q, want 3\n%s", got, list)
			}

			saved := mustRun(t, cfg, "save")
			if !strings.Contains(saved, "coffee: 3 (n/a)") || !strings.Contains(saved, "meeting: 0 (n/a)") {
				t.Errorf("save output = %q", saved)
			}

			list = mustRun(t, cfg, "list")
			if got := countOf(list, "coffee"); got != "0" {
				t.Errorf("coffee count = %q after save, want 0\n%s", got, list)
			}

			hist := mustRun(t, cfg, "history")
			if strings.Count(hist, "\n") != 3 {
				t.Errorf("expected header and 2 history rows:\n%s", hist)
			}

			byDay := mustRun(t, cfg, "history", "--by-day")
			if !strings.Contains(byDay, "\tcoffee: 3") {
				t.Errorf("by-day output = %q", byDay)
			}
		})
	}
}

func TestPhraseReferences(t *testing.T) {
	cfg := writeConfig(t, "file")
	mustRun(t, cfg, "add", "Good", "question", "--hotkey", "Q")

	if out := mustRun(t, cfg, "inc", "good question"); out != "Good question: 1\n" {
		t.Errorf("inc output = %q", out)
	}
	if out := mustRun(t, cfg, "dec", "GOOD QUESTION"); out != "Good question: 0\n" {
		t.Errorf("dec output = %q", out)
	}
	if out := mustRun(t, cfg, "hotkey", "good question", "G"); out != "Good question: [g]\n" {
		t.Errorf("hotkey output = %q", out)
	}
	if out := mustRun(t, cfg, "press", "g"); !strings.Contains(out, "1 increments") {
		t.Errorf("press output = %q", out)
	}
	mustRun(t, cfg, "rm", "good question")

	if _, err := run(t, cfg, "inc", "good question"); err == nil {
		t.Error("expected error for removed phrase")
	}
}

func TestAddRejectsBlank(t *testing.T) {
	cfg := writeConfig(t, "file")
	if _, err := run(t, cfg, "add", "   "); err == nil {
		t.Error("expected error for blank phrase")
	}
}

func TestEphemeralKeepsNothing(t *testing.T) {
	cfg := writeConfig(t, "file")

	mustRun(t, cfg, "--ephemeral", "add", "coffee")
	list := mustRun(t, cfg, "list")
	if strings.Contains(list, "coffee") {
		t.Errorf("ephemeral add should not persist:\n%s", list)
	}
}

func TestUnknownDriver(t *testing.T) {
	cfg := writeConfig(t, "floppy")
	if _, err := run(t, cfg, "list"); err == nil {
		t.Error("expected error for unknown storage driver")
	}
}

func TestNegativeCountsConfig(t *testing.T) {
	cfg := writeConfig(t, "file")
	data, _ := os.ReadFile(cfg)
	data = append(data, []byte("counting:\n  allow_negative: false\n")...)
	if err := os.WriteFile(cfg, data, 0o600); err != nil {
		t.Fatal(err)
	}

	mustRun(t, cfg, "add", "coffee")
	if out := mustRun(t, cfg, "dec", "coffee"); out != "coffee: 0\n" {
		t.Errorf("dec output = %q, want clamped at zero", out)
	}
}
