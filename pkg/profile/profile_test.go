package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "profiles.toml"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestStoreSaveGet(t *testing.T) {
	s := testStore(t)

	want := Profile{
		Server:   "nsp.lab.example.com",
		Username: "admin",
		Network:  "L2Topology",
		Proxy:    "proxy.lab:8080",
		Insecure: true,
		MongoURI: "mongodb://localhost:27017",
	}
	if err := s.Save("lab", want, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get("lab")
	if err != nil {
		t.Fatalf("Get(lab) error = %v", err)
	}
	if got != want {
		t.Errorf("Get(lab) = %+v, want %+v", got, want)
	}

	// The first saved profile becomes the default.
	got, err = s.Get("")
	if err != nil {
		t.Fatalf("Get(default) error = %v", err)
	}
	if got.Server != want.Server {
		t.Errorf("default profile server = %q, want %q", got.Server, want.Server)
	}
}

func TestStoreFilePermissions(t *testing.T) {
	s := testStore(t)
	if err := s.Save("lab", Profile{Server: "nsp"}, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("profile file mode = %o, want 0600", perm)
	}
}

func TestStoreDefaultSelection(t *testing.T) {
	s := testStore(t)
	if err := s.Save("lab", Profile{Server: "lab.example.com"}, false); err != nil {
		t.Fatalf("Save(lab) error = %v", err)
	}
	if err := s.Save("prod", Profile{Server: "prod.example.com"}, true); err != nil {
		t.Fatalf("Save(prod) error = %v", err)
	}

	got, err := s.Get("")
	if err != nil {
		t.Fatalf("Get(default) error = %v", err)
	}
	if got.Server != "prod.example.com" {
		t.Errorf("default server = %q, want prod.example.com", got.Server)
	}

	if err := s.SetDefault("lab"); err != nil {
		t.Fatalf("SetDefault(lab) error = %v", err)
	}
	got, _ = s.Get("")
	if got.Server != "lab.example.com" {
		t.Errorf("default server after SetDefault = %q, want lab.example.com", got.Server)
	}

	if err := s.SetDefault("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetDefault(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStoreGetErrors(t *testing.T) {
	s := testStore(t)

	if _, err := s.Get(""); !errors.Is(err, ErrNoDefault) {
		t.Errorf("Get on empty store error = %v, want ErrNoDefault", err)
	}

	if err := s.Save("lab", Profile{Server: "nsp"}, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	s := testStore(t)
	if err := s.Save("lab", Profile{Server: "nsp"}, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Delete("lab"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(""); !errors.Is(err, ErrNoDefault) {
		t.Errorf("Get after deleting the default error = %v, want ErrNoDefault", err)
	}
	if err := s.Delete("lab"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStoreNames(t *testing.T) {
	s := testStore(t)
	for _, name := range []string{"zulu", "alpha", "mike"} {
		if err := s.Save(name, Profile{Server: name + ".example.com"}, false); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	names, err := s.Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	want := []string{"alpha", "mike", "zulu"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Names() = %v, want %v", names, want)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := testStore(t)

	f, err := s.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if f.Default != "" || len(f.Profiles) != 0 {
		t.Errorf("Load() on missing file = %+v, want empty", f)
	}
}

func TestStoreSaveRequiresName(t *testing.T) {
	s := testStore(t)
	if err := s.Save("", Profile{Server: "nsp"}, false); err == nil {
		t.Error("Save with empty name should fail")
	}
}
