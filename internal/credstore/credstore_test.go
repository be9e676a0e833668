package credstore

import "testing"

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SRV01", "srv01"},
		{"  fileserver.local  ", "fileserver.local"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHost(tt.in); got != tt.want {
			t.Errorf("NormalizeHost(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestMemory_GetPut(t *testing.T) {
	m := NewMemory()

	if _, found, err := m.Get("srv01"); err != nil || found {
		t.Fatalf("Get on empty store: found=%v err=%v", found, err)
	}

	cred := Credential{Username: "backup", Secret: "hunter2"}
	if err := m.Put("SRV01", cred); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Host keys are case-insensitive.
	got, found, err := m.Get("srv01")
	if err != nil || !found {
		t.Fatalf("Get after Put: found=%v err=%v", found, err)
	}
	if got != cred {
		t.Fatalf("Get = %+v; want %+v", got, cred)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d; want 1", m.Len())
	}
}
