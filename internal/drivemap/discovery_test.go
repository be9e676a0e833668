package drivemap

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/drivesave/drivesave/internal/types"
)

func TestParseNetUseTable(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   MappingSet
	}{
		{
			"single mapping",
			netUseMounted,
			MappingSet{{DriveLetter: "Z", RemotePath: `\\srv01\data`}},
		},
		{
			"no entries",
			netUseEmpty,
			MappingSet{},
		},
		{
			"multiple mappings with mixed status",
			"New connections will be remembered.\n\n" +
				"Status       Local     Remote                    Network\n\n" +
				"-------------------------------------------------------------------------------\n" +
				"OK           Z:        \\\\srv01\\data              Microsoft Windows Network\n" +
				"Disconnected Y:        \\\\nas\\media               Microsoft Windows Network\n" +
				"             X:        \\\\srv02\\archive           Microsoft Windows Network\n" +
				"The command completed successfully.\n",
			MappingSet{
				{DriveLetter: "Z", RemotePath: `\\srv01\data`},
				{DriveLetter: "Y", RemotePath: `\\nas\media`},
				{DriveLetter: "X", RemotePath: `\\srv02\archive`},
			},
		},
		{
			"long remote wrapped onto continuation line",
			"Status       Local     Remote                    Network\n\n" +
				"-------------------------------------------------------------------------------\n" +
				"OK           W:\n" +
				"                       \\\\fileserver01.corp.example.com\\department-shared-documents\n" +
				"                                                Microsoft Windows Network\n" +
				"The command completed successfully.\n",
			MappingSet{
				{DriveLetter: "W", RemotePath: `\\fileserver01.corp.example.com\department-shared-documents`},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNetUseTable(tt.output, false)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseNetUseTable() =\n%+v\nwant\n%+v", got, tt.want)
			}
		})
	}
}

func TestParseNetUseTablePersistentDefault(t *testing.T) {
	set := parseNetUseTable(netUseMounted, true)
	if len(set) != 1 || !set[0].Persistent {
		t.Fatalf("persistent default not applied: %+v", set)
	}
}

func TestListActiveMappingsEnumerationFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.on("net use", "", errors.New("exec: \"net\": executable file not found"))

	d := NewDiscovery(Deps{Logger: newTestLogger(), Runner: runner})
	set := d.ListActiveMappings(context.Background(), types.ScopeUser)
	if set == nil {
		t.Fatal("want empty set, got nil")
	}
	if len(set) != 0 {
		t.Fatalf("want empty set, got %+v", set)
	}
}

func TestListActiveMappingsMachineScopeDowngrade(t *testing.T) {
	runner := newFakeRunner()
	runner.on("net use", netUseMounted, nil)

	d := NewDiscovery(Deps{Logger: newTestLogger(), Runner: runner})
	set := d.ListActiveMappings(context.Background(), types.ScopeMachine)
	if len(set) != 1 || set[0].DriveLetter != "Z" {
		t.Fatalf("machine scope did not fall back to session mappings: %+v", set)
	}
}

func TestScanNetUseRow(t *testing.T) {
	tests := []struct {
		line   string
		letter string
		remote string
	}{
		{`OK           Z:        \\srv01\data              Microsoft Windows Network`, "Z", `\\srv01\data`},
		{`             y:        \\nas\media`, "Y", `\\nas\media`},
		{`OK           W:`, "W", ""},
		{`                       \\srv01\data`, "", `\\srv01\data`},
		{`The command completed successfully.`, "", ""},
		// Share names may legally contain spaces; the column gap, not the
		// first space, ends the remote path.
		{`OK           V:        \\srv01\my docs           Microsoft Windows Network`, "V", `\\srv01\my docs`},
	}

	for _, tt := range tests {
		letter, remote := scanNetUseRow(tt.line)
		if letter != tt.letter || remote != tt.remote {
			t.Errorf("scanNetUseRow(%q) = (%q, %q), want (%q, %q)",
				tt.line, letter, remote, tt.letter, tt.remote)
		}
	}
}
