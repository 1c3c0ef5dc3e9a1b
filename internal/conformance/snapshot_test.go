package conformance

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/kindahl/es2c/internal/driver"
)

// TestEmittedSourceSnapshots snapshot-tests the emitted C source and IR
// dump for a small set of representative programs, the same role
// go-snaps plays for the teacher's own fixture corpus.
func TestEmittedSourceSnapshots(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"var_decl", "var x = 1; x;"},
		{"function_capture", propertyCorpus},
		{"for_in", "for (var k in {a:1,b:2}) k;"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, err := driver.Compile(c.name+".js", []byte(c.src))
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			snaps.MatchSnapshot(t, c.name+"_source", result.Source)
			snaps.MatchSnapshot(t, c.name+"_ir", result.IR)
		})
	}
}
