package conformance

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kindahl/es2c/internal/driver"
)

// TestScenarios runs every case in testdata/scenarios.yaml through the
// full driver pipeline and checks it against the concrete end-to-end
// examples spec.md §8 lists.
func TestScenarios(t *testing.T) {
	manifest, err := LoadManifest(filepath.Join("testdata", "scenarios.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(manifest.Scenarios) == 0 {
		t.Fatalf("expected at least one scenario in the manifest")
	}

	for _, sc := range manifest.Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			result, err := driver.Compile(sc.Name+".js", []byte(sc.Source))

			if sc.ExpectError {
				if err == nil {
					t.Fatalf("%s: expected an error, compile succeeded", sc.Description)
				}
				if sc.WantErrorSubstr != "" && !strings.Contains(err.Error(), sc.WantErrorSubstr) {
					t.Fatalf("%s: expected error to contain %q, got: %v", sc.Description, sc.WantErrorSubstr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("%s: unexpected error: %v", sc.Description, err)
			}

			for _, want := range sc.WantIR {
				if !strings.Contains(result.IR, want) {
					t.Errorf("%s: expected IR to contain %q, got:\n%s", sc.Description, want, result.IR)
				}
			}
			for _, want := range sc.WantSource {
				if !strings.Contains(result.Source, want) {
					t.Errorf("%s: expected source to contain %q, got:\n%s", sc.Description, want, result.Source)
				}
			}
			for _, notWant := range sc.WantSourceNot {
				if strings.Contains(result.Source, notWant) {
					t.Errorf("%s: expected source NOT to contain %q, got:\n%s", sc.Description, notWant, result.Source)
				}
			}
			for substr, want := range sc.WantIRCount {
				if got := strings.Count(result.IR, substr); got != want {
					t.Errorf("%s: expected %q to occur %d time(s) in IR, got %d:\n%s", sc.Description, substr, want, got, result.IR)
				}
			}

			if sc.Sidecar != "" {
				checkSidecar(t, sc, result)
			}
		})
	}
}

func checkSidecar(t *testing.T, sc Scenario, result *driver.Result) {
	t.Helper()
	expect, err := LoadExpectations(filepath.Join("testdata", sc.Sidecar))
	if err != nil {
		t.Fatalf("%s: %v", sc.Name, err)
	}
	for _, symbol := range expect.Strings("wantSymbols") {
		if !strings.Contains(result.Source, symbol) {
			t.Errorf("%s: expected emitted source to call %q, got:\n%s", sc.Name, symbol, result.Source)
		}
	}
}
