package drivemap

import (
	"context"
	"errors"
	"testing"
)

const netUseTwoMappings = `Status       Local     Remote                    Network

-------------------------------------------------------------------------------
OK           Z:        \\srv01\data              Microsoft Windows Network
OK           Y:        \\nas\media               Microsoft Windows Network
The command completed successfully.
`

func TestClearAll(t *testing.T) {
	runner := newFakeRunner()
	runner.on("net use", netUseTwoMappings, nil)
	runner.on("net use Z: /delete /y", "Z: was deleted successfully.\r\n", nil)
	runner.on("net use Y: /delete /y", "Y: was deleted successfully.\r\n", nil)

	c := NewCleaner(Deps{Logger: newTestLogger(), Runner: runner})
	summary := c.ClearAll(context.Background())

	if summary.Attempted != 2 || summary.Removed != 2 || len(summary.Failures) != 0 {
		t.Fatalf("summary = %+v, want 2 attempted, 2 removed", summary)
	}
}

// An unmap failure must not stop the remaining letters from being released.
func TestClearAllIsolatesFailures(t *testing.T) {
	runner := newFakeRunner()
	runner.on("net use", netUseTwoMappings, nil)
	runner.on("net use Z: /delete /y",
		"System error 2401 has occurred.\r\n\r\nThere are open files on the connection.\r\n",
		errors.New("exit status 2"))
	runner.on("net use Y: /delete /y", "Y: was deleted successfully.\r\n", nil)

	c := NewCleaner(Deps{Logger: newTestLogger(), Runner: runner})
	summary := c.ClearAll(context.Background())

	if summary.Attempted != 2 || summary.Removed != 1 {
		t.Fatalf("summary = %+v, want 2 attempted, 1 removed", summary)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Record.DriveLetter != "Z" {
		t.Fatalf("failures = %+v, want the Z: record", summary.Failures)
	}
	if got := runner.callCount("net use Y: /delete /y"); got != 1 {
		t.Errorf("Y: unmapped %d times after Z: failed, want 1", got)
	}
}

func TestClearAllNothingMounted(t *testing.T) {
	runner := newFakeRunner()
	runner.on("net use", netUseEmpty, nil)

	c := NewCleaner(Deps{Logger: newTestLogger(), Runner: runner})
	summary := c.ClearAll(context.Background())

	if summary.Attempted != 0 || summary.Removed != 0 || len(summary.Failures) != 0 {
		t.Fatalf("summary = %+v, want all zeros", summary)
	}
}

func TestClearAllDryRun(t *testing.T) {
	runner := newFakeRunner()
	runner.on("net use", netUseTwoMappings, nil)

	c := NewCleaner(Deps{Logger: newTestLogger(), Runner: runner, DryRun: true})
	summary := c.ClearAll(context.Background())

	if summary.Attempted != 2 || summary.Removed != 2 {
		t.Fatalf("summary = %+v, want dry run to count both", summary)
	}
	if got := runner.callCount("net use Z: /delete /y"); got != 0 {
		t.Errorf("dry run issued %d delete commands, want 0", got)
	}
}
