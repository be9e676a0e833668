package drivemap

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/drivesave/drivesave/internal/credstore"
	"github.com/drivesave/drivesave/internal/logging"
	"github.com/drivesave/drivesave/internal/types"
)

const netUseMounted = `New connections will be remembered.


Status       Local     Remote                    Network

-------------------------------------------------------------------------------
OK           Z:        \\srv01\data              Microsoft Windows Network
The command completed successfully.
`

const netUseEmpty = "There are no entries in the list.\n"

func newTestLogger() *logging.Logger {
	return logging.New(types.LogLevelNone, false)
}

type cmdResult struct {
	output string
	err    error
}

// fakeRunner replays scripted responses keyed by the full command line.
// Multiple responses for the same key are consumed in order; the last one
// sticks.
type fakeRunner struct {
	mu        sync.Mutex
	calls     [][]string
	responses map[string][]cmdResult
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string][]cmdResult)}
}

func (f *fakeRunner) on(commandLine, output string, err error) {
	f.responses[commandLine] = append(f.responses[commandLine], cmdResult{output: output, err: err})
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := name
	if len(args) > 0 {
		key += " " + strings.Join(args, " ")
	}
	f.calls = append(f.calls, append([]string{name}, args...))

	queue, ok := f.responses[key]
	if !ok || len(queue) == 0 {
		return nil, fmt.Errorf("unexpected command: %s", key)
	}
	res := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	return []byte(res.output), res.err
}

func (f *fakeRunner) callCount(commandLine string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, call := range f.calls {
		if strings.Join(call, " ") == commandLine {
			n++
		}
	}
	return n
}

type fixedTime struct {
	t time.Time
}

func (f fixedTime) Now() time.Time { return f.t }

type fakePrompter struct {
	cred  credstore.Credential
	err   error
	calls int
}

func (p *fakePrompter) PromptCredential(_ context.Context, _ string) (credstore.Credential, error) {
	p.calls++
	return p.cred, p.err
}

// End-to-end path of a backup run: enumerate, label, persist, reload and
// render the restore script.
func TestBackupScenario(t *testing.T) {
	runner := newFakeRunner()
	runner.on("net use", netUseMounted, nil)

	discovery := NewDiscovery(Deps{Logger: newTestLogger(), Runner: runner})
	set := discovery.ListActiveMappings(context.Background(), types.ScopeUser)
	if len(set) != 1 {
		t.Fatalf("discovered %d mappings, want 1", len(set))
	}
	if set[0].DriveLetter != "Z" || set[0].RemotePath != `\\srv01\data` {
		t.Fatalf("unexpected mapping: %+v", set[0])
	}

	resolver := NewResolver(newTestLogger())
	set[0].Description = resolver.Resolve(context.Background(), set[0].DriveLetter, set[0].RemotePath)
	if set[0].Description != "Data (Srv01)" {
		t.Fatalf("derived description = %q, want %q", set[0].Description, "Data (Srv01)")
	}

	path := filepath.Join(t.TempDir(), "drive-mappings.json")
	if err := Save(set, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, set) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, set)
	}

	gen := NewGenerator(Deps{Time: fixedTime{t: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}})
	script, err := gen.Generate(loaded)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(script), `\\srv01\data`) {
		t.Fatalf("script does not reference the remote path:\n%s", script)
	}
	if !strings.Contains(string(script), "-Letter 'Z'") {
		t.Fatalf("script does not reference the drive letter:\n%s", script)
	}
}
