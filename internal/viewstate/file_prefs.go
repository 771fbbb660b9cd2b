package viewstate

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

type prefsFile struct {
	Preferences map[string]string `toml:"preferences"`
}

// FilePreferences persists preferences in a TOML file. A missing or
// unreadable file behaves as an empty store.
type FilePreferences struct {
	mu   sync.Mutex
	path string
}

// NewFilePreferences stores preferences at path.
func NewFilePreferences(path string) *FilePreferences {
	return &FilePreferences{path: path}
}

// DefaultPreferencesPath returns $XDG_CONFIG_HOME/vlmbench/preferences.toml,
// falling back to ~/.config.
func DefaultPreferencesPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "vlmbench", "preferences.toml")
}

// Path returns the backing file path.
func (p *FilePreferences) Path() string {
	return p.path
}

func (p *FilePreferences) load() prefsFile {
	f := prefsFile{Preferences: make(map[string]string)}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return f
	}
	if _, err := toml.Decode(string(data), &f); err != nil || f.Preferences == nil {
		return prefsFile{Preferences: make(map[string]string)}
	}
	return f
}

func (p *FilePreferences) save(f prefsFile) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	tmp := p.path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create preferences file: %w", err)
	}
	if err := toml.NewEncoder(out).Encode(f); err != nil {
		out.Close()
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close preferences file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace preferences file: %w", err)
	}
	return nil
}

func (p *FilePreferences) Get(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.load().Preferences[key]
	return v, ok
}

func (p *FilePreferences) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.load()
	f.Preferences[key] = value
	return p.save(f)
}

func (p *FilePreferences) Remove(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.load()
	if _, ok := f.Preferences[key]; !ok {
		return nil
	}
	delete(f.Preferences, key)
	return p.save(f)
}
