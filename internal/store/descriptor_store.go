package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"anonchat/internal/domain"
)

const descriptorExt = ".room.enc"

// FileStore keeps one encrypted descriptor file per room.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// SaveDescriptor seals the descriptor and writes it to disk, replacing
// any previous descriptor for the same room.
func (s *FileStore) SaveDescriptor(passphrase string, d domain.RoomDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	t, m, lanes := argonParamsDefault()
	blob, err := seal(passphrase, raw, t, m, lanes)
	if err != nil {
		return err
	}
	return writeFile(s.path(d.RoomCode), blob, 0o600)
}

// LoadDescriptor reads and unseals the descriptor for code. The second
// return is false when no descriptor exists for that room.
func (s *FileStore) LoadDescriptor(passphrase string, code domain.RoomCode) (domain.RoomDescriptor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := readFile(s.path(code))
	if err != nil {
		return domain.RoomDescriptor{}, false, err
	}
	if blob == nil {
		return domain.RoomDescriptor{}, false, nil
	}
	raw, err := open(passphrase, blob)
	if err != nil {
		return domain.RoomDescriptor{}, false, err
	}
	var d domain.RoomDescriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return domain.RoomDescriptor{}, false, err
	}
	return d, true, nil
}

// DeleteDescriptor removes the descriptor for code. Deleting a room that
// was never saved is not an error.
func (s *FileStore) DeleteDescriptor(code domain.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(code))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ListRooms returns the codes of every room with a stored descriptor.
func (s *FileStore) ListRooms() ([]domain.RoomCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var codes []domain.RoomCode
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		code, ok := strings.CutSuffix(e.Name(), descriptorExt)
		if !ok || code == "" {
			continue
		}
		codes = append(codes, domain.RoomCode(code))
	}
	return codes, nil
}

func (s *FileStore) path(code domain.RoomCode) string {
	return filepath.Join(s.dir, code.String()+descriptorExt)
}

// readFile reads the file at path; a missing file is not an error.
func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Compile-time assertion that FileStore implements domain.DescriptorStore.
var _ domain.DescriptorStore = (*FileStore)(nil)
