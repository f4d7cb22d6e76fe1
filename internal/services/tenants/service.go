// Package tenants manages tenant profiles with file watching and persistence.
//
// The profiles file is shared with other Nexora tooling, so external edits
// are picked up live and re-broadcast to the UI.
package tenants

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/models"
)

// ProfilesFile is the JSON file structure for tenant profile storage.
type ProfilesFile struct {
	Tenants      []models.TenantProfile `json:"tenants"`
	ActiveTenant string                 `json:"activeTenant,omitempty"`
	Version      int                    `json:"version,omitempty"`
}

// Event represents a tenants service event.
type Event struct {
	Type   EventType
	Error  error
	Tenant *models.TenantProfile
}

// EventType defines the type of tenants event.
type EventType int

// Tenant event types.
const (
	EventProfilesLoaded EventType = iota
	EventProfilesChanged
	EventActiveTenantChanged
	EventError
)

// Service manages tenant profiles with file watching and change notifications.
type Service struct {
	mu            sync.RWMutex
	tenants       []models.TenantProfile
	activeTenant  string
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New creates a tenants service and starts file watching.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		return nil, fmt.Errorf("tenants file path must not be empty")
	}

	s := &Service{
		tenants:   make([]models.TenantProfile, 0),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.load(); err != nil {
		// A missing file is the first-run case; create an empty one.
		if os.IsNotExist(err) {
			if err := s.save(); err != nil {
				return nil, fmt.Errorf("failed to create tenants file: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load tenants: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventProfilesLoaded})

	return s, nil
}

// Events returns the event channel for subscribing to tenant changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// GetTenants returns a copy of all tenant profiles.
func (s *Service) GetTenants() []models.TenantProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenants := make([]models.TenantProfile, len(s.tenants))
	copy(tenants, s.tenants)
	return tenants
}

// GetActiveTenant returns the currently active tenant profile, falling
// back to the first profile when none is marked active.
func (s *Service) GetActiveTenant() *models.TenantProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.tenants {
		if s.tenants[i].Name == s.activeTenant {
			t := s.tenants[i].Clone()
			return &t
		}
	}
	if len(s.tenants) > 0 {
		t := s.tenants[0].Clone()
		return &t
	}
	return nil
}

// SetActiveTenant switches the active tenant by profile name.
func (s *Service) SetActiveTenant(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, t := range s.tenants {
		if t.Name == name {
			found = true
			s.activeTenant = t.Name
			break
		}
	}
	if !found {
		return fmt.Errorf("tenant not found: %s", name)
	}

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save tenants: %w", err)
	}

	s.sendEvent(Event{Type: EventActiveTenantChanged})
	return nil
}

// AddTenant appends a new profile. Names are the natural key.
func (s *Service) AddTenant(t models.TenantProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tenants {
		if existing.Name == t.Name {
			return fmt.Errorf("tenant %s already exists", t.Name)
		}
	}

	if t.AddedAt.IsZero() {
		t.AddedAt = time.Now()
	}
	s.tenants = append(s.tenants, t)
	if len(s.tenants) == 1 {
		s.activeTenant = t.Name
	}

	if err := s.saveLocked(); err != nil {
		s.tenants = s.tenants[:len(s.tenants)-1]
		return fmt.Errorf("failed to save tenants: %w", err)
	}

	s.sendEvent(Event{Type: EventProfilesChanged, Tenant: &t})
	return nil
}

// DeleteTenant removes a profile by name.
func (s *Service) DeleteTenant(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.tenants {
		if t.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("tenant not found: %s", name)
	}

	s.tenants = append(s.tenants[:idx], s.tenants[idx+1:]...)
	if s.activeTenant == name {
		s.activeTenant = ""
		if len(s.tenants) > 0 {
			s.activeTenant = s.tenants[0].Name
		}
	}

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save tenants: %w", err)
	}

	s.sendEvent(Event{Type: EventProfilesChanged})
	return nil
}

// Count returns the number of profiles.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants)
}

// load reads the profiles file.
func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var file ProfilesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse tenants file: %w", err)
	}

	active := file.ActiveTenant
	if active == "" && len(file.Tenants) > 0 {
		active = file.Tenants[0].Name
	}

	s.mu.Lock()
	s.tenants = file.Tenants
	s.activeTenant = active
	s.mu.Unlock()
	return nil
}

// save persists the profiles file (public version).
func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked persists the profiles file (must hold lock).
func (s *Service) saveLocked() error {
	file := ProfilesFile{
		Tenants:      s.tenants,
		ActiveTenant: s.activeTenant,
		Version:      1,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tenants: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory to catch file creation/deletion.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads profiles after an external edit.
func (s *Service) handleFileChange() {
	s.mu.RLock()
	oldActive := s.activeTenant
	s.mu.RUnlock()

	if err := s.load(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.sendEvent(Event{Type: EventProfilesChanged})

	s.mu.RLock()
	newActive := s.activeTenant
	s.mu.RUnlock()
	if newActive != oldActive {
		s.sendEvent(Event{Type: EventActiveTenantChanged})
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
