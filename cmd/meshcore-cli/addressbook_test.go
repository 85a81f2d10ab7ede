package main

import (
	"testing"
	"time"
)

func TestAddressBookRememberAndSave(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	book, err := LoadAddressBook()
	if err != nil {
		t.Fatalf("LoadAddressBook: %v", err)
	}
	if len(book.Entries) != 0 {
		t.Fatalf("expected a fresh address book, got %d entries", len(book.Entries))
	}

	book.Remember("lobby", Address{Kind: "tcp", Addr: "192.168.1.50:5000"})
	if err := book.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := LoadAddressBook()
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	entry, ok := reloaded.Entries["lobby"]
	if !ok {
		t.Fatal("expected a remembered \"lobby\" entry")
	}
	if entry.Addr != "192.168.1.50:5000" || entry.Kind != "tcp" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if time.Since(entry.LastSeen) > time.Minute {
		t.Fatalf("LastSeen wasn't stamped recently: %v", entry.LastSeen)
	}
}

func TestAddressBookMissingFileReturnsEmpty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	book, err := LoadAddressBook()
	if err != nil {
		t.Fatalf("LoadAddressBook: %v", err)
	}
	if book.Version != addressVersion {
		t.Fatalf("Version = %d, want %d", book.Version, addressVersion)
	}
	if book.Entries == nil {
		t.Fatal("Entries should be initialized, not nil")
	}
}
