package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Claves bajo las que se persiste el estado de sesion, con la misma vida
// util que tendrian como cookies: sesion corta de 1h y refresh de 14 dias.
const (
	KeyUser         = "user"
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyCompanies    = "companies"
)

const (
	SessionTTL = time.Hour
	RefreshTTL = 14 * 24 * time.Hour
)

// Store es la capa de persistencia clave-valor de la sesion. Se inyecta
// explicitamente en cada componente que la necesita en lugar de depender de
// un almacenamiento ambiental; un fake en memoria sirve para tests.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Delete(key string)
	Clear()
}

type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e entry) expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().UTC().After(e.ExpiresAt)
}

// MemoryStore implementa Store en memoria con expiracion por clave.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]entry)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		return "", false
	}
	if e.expired() {
		delete(s.items, key)
		return "", false
	}
	return e.Value, true
}

func (s *MemoryStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().UTC().Add(ttl)
	}
	s.items[key] = entry{Value: value, ExpiresAt: expiresAt}
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]entry)
}

// FileStore implementa Store sobre un archivo JSON para que la sesion
// sobreviva reinicios del proceso, igual que las cookies sobreviven
// recargas de pagina.
type FileStore struct {
	mu    sync.Mutex
	path  string
	items map[string]entry
}

// NewFileStore abre (o crea) el archivo de sesion en path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		items: make(map[string]entry),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	// Un archivo corrupto se trata como sesion vacia.
	_ = json.Unmarshal(data, &s.items)
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		return "", false
	}
	if e.expired() {
		delete(s.items, key)
		s.persistLocked()
		return "", false
	}
	return e.Value, true
}

func (s *FileStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().UTC().Add(ttl)
	}
	s.items[key] = entry{Value: value, ExpiresAt: expiresAt}
	s.persistLocked()
}

func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	s.persistLocked()
}

func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]entry)
	s.persistLocked()
}

func (s *FileStore) persistLocked() {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o600)
}
