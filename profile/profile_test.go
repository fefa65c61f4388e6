package profile

import (
	"slices"
	"testing"
)

func TestSettings_StartEmptyModeIsNoop(t *testing.T) {
	stop := Settings{}.Start()

	if _, ok := stop.(ignore); !ok {
		t.Fatalf("Start() = %T, want no-op", stop)
	}

	stop.Stop()
	stop.Stop()
}

func TestSettings_StartUnknownModeIsNoop(t *testing.T) {
	stop := Settings{Mode: "no-such-mode", Dir: t.TempDir(), Quiet: true}.Start()
	defer stop.Stop()

	if _, ok := stop.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", stop)
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("Modes() = %v without profiling compiled in", modes)
		}

		return
	}

	if !slices.IsSorted(modes) || !slices.Contains(modes, "cpu") {
		t.Errorf("Modes() = %v, want sorted list containing cpu", modes)
	}
}
