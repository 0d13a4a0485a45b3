package filestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MetadataFile is the per-team sidecar listing uploaded files.
const MetadataFile = "files_metadata.json"

// RosterFile holds the squad list at the store root.
const RosterFile = "players.json"

var ErrEntryNotFound = errors.New("file entry not found")

// Entry describes one uploaded file.
type Entry struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	SavedName    string    `json:"saved_name"`
	Path         string    `json:"path"`
	Hash         string    `json:"hash"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Store keeps uploaded match files as-is under <root>/<team>/ with a JSON
// sidecar per team.
type Store struct {
	Root string

	mu  sync.Mutex
	now func() time.Time
}

func New(root string) *Store {
	return &Store{Root: root, now: time.Now}
}

// Save writes data under the team directory as "<timestamp>_<name>" and
// records it in the sidecar.
func (s *Store) Save(team, name, hash string, data []byte) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.teamDir(team)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("create team dir: %w", err)
	}

	now := s.now().UTC()
	saved := now.Format("20060102_150405") + "_" + sanitize(filepath.Base(name))
	path := filepath.Join(dir, saved)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Entry{}, fmt.Errorf("write file: %w", err)
	}

	entries, err := s.readEntries(team)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		ID:           uuid.NewString(),
		OriginalName: name,
		SavedName:    saved,
		Path:         path,
		Hash:         hash,
		Size:         int64(len(data)),
		UploadedAt:   now,
	}
	entries = append(entries, e)
	if err := s.writeJSON(filepath.Join(dir, MetadataFile), entries); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns the team's uploads, newest first.
func (s *Store) List(team string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.readEntries(team)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].UploadedAt.After(entries[j].UploadedAt) })
	return entries, nil
}

// Delete removes an upload and its sidecar entry. id may be the entry id or
// the file hash.
func (s *Store) Delete(team, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries(team)
	if err != nil {
		return err
	}
	kept := entries[:0]
	var removed *Entry
	for i := range entries {
		if removed == nil && (entries[i].ID == id || entries[i].Hash == id) {
			e := entries[i]
			removed = &e
			continue
		}
		kept = append(kept, entries[i])
	}
	if removed == nil {
		return ErrEntryNotFound
	}
	if err := os.Remove(removed.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return s.writeJSON(filepath.Join(s.teamDir(team), MetadataFile), kept)
}

func (s *Store) readEntries(team string) ([]Entry, error) {
	var entries []Entry
	if err := s.readJSON(filepath.Join(s.teamDir(team), MetadataFile), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) teamDir(team string) string {
	return filepath.Join(s.Root, sanitize(team))
}

// readJSON decodes path into v. A missing file leaves v untouched.
func (s *Store) readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}._ -]+`)

// sanitize turns a user-supplied name into a single safe path element.
func sanitize(name string) string {
	name = unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, ". ")
	if name == "" {
		return "_"
	}
	return name
}
