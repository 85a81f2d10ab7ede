package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "meshcore-cli"
	addressFile    = "addressbook.yaml"
	addressVersion = 1
)

// AddressBook remembers where to dial previously-seen bridges, keyed by
// the --device value a user passed (a friendly name or a literal
// host:port); bridges reached through mDNS discovery alone are not
// recorded. It never stores protocol state — only dial info, the way a
// browser remembers a hostname rather than a session.
type AddressBook struct {
	Version int                 `yaml:"version"`
	Entries map[string]*Address `yaml:"entries,omitempty"`
}

// Address is one remembered bridge.
type Address struct {
	Kind     string    `yaml:"kind"` // "tcp" or "serial"
	Addr     string    `yaml:"addr"` // host:port, or a serial port path
	BaudRate int       `yaml:"baud,omitempty"`
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

var fileMutex sync.Mutex

// addressBookPath returns the OS-appropriate config path for the address
// book, following the same XDG/LOCALAPPDATA conventions the wider
// ecosystem uses.
func addressBookPath() (string, error) {
	var baseDir string
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			return "", fmt.Errorf("LOCALAPPDATA not set")
		}
		baseDir = filepath.Join(localAppData, appName)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			baseDir = filepath.Join(xdg, appName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(home, ".config", appName)
		}
	}
	return filepath.Join(baseDir, addressFile), nil
}

// LoadAddressBook reads the address book from disk, returning an empty
// one if the file doesn't exist yet.
func LoadAddressBook() (*AddressBook, error) {
	path, err := addressBookPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &AddressBook{Version: addressVersion, Entries: map[string]*Address{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading address book: %w", err)
	}

	var book AddressBook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parsing address book: %w", err)
	}
	if book.Entries == nil {
		book.Entries = map[string]*Address{}
	}
	return &book, nil
}

// Remember records (or refreshes) a bridge's dial info.
func (b *AddressBook) Remember(name string, addr Address) {
	addr.LastSeen = time.Now()
	b.Entries[name] = &addr
}

// Save writes the address book atomically.
func (b *AddressBook) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	path, err := addressBookPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling address book: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing address book: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("saving address book: %w", err)
	}
	return nil
}
