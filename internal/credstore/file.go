package credstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"
)

// ErrBadPassphrase reports that the on-disk store exists but could not be
// decrypted with the supplied passphrase.
var ErrBadPassphrase = errors.New("credential store passphrase rejected")

// FileStore persists credentials in a single age-encrypted JSON file. The
// encryption identity is derived from a passphrase (age scrypt recipient), so
// the file is safe to sit next to the backup artifacts.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
	entries    map[string]Credential
}

// OpenFile loads (or initializes) the encrypted store at path. A missing file
// yields an empty store; an existing file that does not decrypt yields
// ErrBadPassphrase so the caller can degrade to prompt-only operation.
func OpenFile(path, passphrase string) (*FileStore, error) {
	fs := &FileStore{
		path:       path,
		passphrase: passphrase,
		entries:    make(map[string]Credential),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("read credential store %s: %w", path, err)
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive store identity: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPassphrase, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential store %s: %w", path, err)
	}
	if err := json.Unmarshal(plaintext, &fs.entries); err != nil {
		return nil, fmt.Errorf("parse credential store %s: %w", path, err)
	}
	return fs, nil
}

// Get returns the credential stored for host, if any.
func (f *FileStore) Get(host string) (Credential, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred, ok := f.entries[NormalizeHost(host)]
	return cred, ok, nil
}

// Put stores a credential for host and persists the whole store atomically.
func (f *FileStore) Put(host string, cred Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[NormalizeHost(host)] = cred
	return f.persistLocked()
}

// Len reports the number of stored credentials.
func (f *FileStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *FileStore) persistLocked() error {
	plaintext, err := json.Marshal(f.entries)
	if err != nil {
		return fmt.Errorf("encode credential store: %w", err)
	}

	recipient, err := age.NewScryptRecipient(f.passphrase)
	if err != nil {
		return fmt.Errorf("derive store recipient: %w", err)
	}

	var buf bytes.Buffer
	writer, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return fmt.Errorf("encrypt credential store: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return fmt.Errorf("encrypt credential store: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize credential store encryption: %w", err)
	}

	// Write-then-rename keeps the previous store intact on failure.
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".credstore-*")
	if err != nil {
		return fmt.Errorf("create temp credential store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write credential store: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("set credential store permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close credential store: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace credential store: %w", err)
	}
	return nil
}
