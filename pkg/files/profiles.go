package files

import (
	"fmt"
	"strings"

	"github.com/small-frappuccino/richpresence/pkg/errors"
	"github.com/small-frappuccino/richpresence/pkg/errutil"
	"github.com/small-frappuccino/richpresence/pkg/log"
	"github.com/small-frappuccino/richpresence/pkg/util"
)

const component = "files"

// --- Initialization & Persistence ---

// NewProfileManager creates a manager for the default profiles.json location.
func NewProfileManager() *ProfileManager {
	return NewProfileManagerWithPath(util.GetProfilesFilePath())
}

// NewProfileManagerWithPath creates a manager backed by a custom file.
func NewProfileManagerWithPath(path string) *ProfileManager {
	return &ProfileManager{
		filePath:    path,
		jsonManager: util.NewJSONManager(path),
		profiles:    make(map[string]Profile),
	}
}

// Path returns the backing file path.
func (mgr *ProfileManager) Path() string { return mgr.filePath }

// Load replaces the in-memory store with the document on disk.
// The recorded last profile becomes active when it resolves, otherwise the first profile.
// A missing file yields an empty store.
func (mgr *ProfileManager) Load() error {
	if strings.TrimSpace(mgr.filePath) == "" {
		return errors.Validation(component, "load", "profiles path is empty")
	}

	var exists bool
	if err := errutil.HandleConfigError("stat", mgr.filePath, func() (err error) {
		exists, err = mgr.jsonManager.Exists()
		return err
	}); err != nil {
		return err
	}
	if !exists {
		log.ApplicationLogger().Info(fmt.Sprintf(LogLoadProfilesFileNotFound, mgr.filePath))
		mgr.mu.Lock()
		mgr.profiles = make(map[string]Profile)
		mgr.order = nil
		mgr.active = ""
		mgr.mu.Unlock()
		return nil
	}

	var doc document
	if err := errutil.HandleConfigError("read", mgr.filePath, func() error {
		return mgr.jsonManager.Load(&doc)
	}); err != nil {
		return err
	}
	if doc.profiles == nil {
		doc.profiles = make(map[string]Profile)
	}

	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	mgr.profiles = doc.profiles
	mgr.order = doc.order
	mgr.active = ""

	switch {
	case doc.last != "" && mgr.hasLocked(doc.last):
		mgr.active = doc.last
	case len(mgr.order) > 0:
		if doc.last != "" {
			log.ApplicationLogger().Info(LogLastProfileUnknown, "last_profile", doc.last)
		}
		mgr.active = mgr.order[0]
	default:
		log.ApplicationLogger().Info(fmt.Sprintf(LogLoadProfilesEmpty, mgr.filePath))
	}
	return nil
}

// Save writes every profile plus the active name to disk.
func (mgr *ProfileManager) Save() error {
	mgr.mu.RLock()
	doc := document{
		order:    append([]string(nil), mgr.order...),
		profiles: make(map[string]Profile, len(mgr.profiles)),
		last:     mgr.active,
	}
	for name, p := range mgr.profiles {
		doc.profiles[name] = p.Clone()
	}
	mgr.mu.RUnlock()

	if err := errutil.HandleConfigError("write", mgr.filePath, func() error {
		return mgr.jsonManager.Save(doc)
	}); err != nil {
		return err
	}

	log.ApplicationLogger().Info(fmt.Sprintf(LogSaveProfilesSuccess, mgr.filePath), "profiles", len(doc.order))
	return nil
}

// --- Mutations ---

// Put replaces (or inserts) the named profile wholesale and makes it active. It does not persist.
func (mgr *ProfileManager) Put(name string, p Profile) error {
	if strings.TrimSpace(name) == "" {
		return errors.Validation(component, "save", "profile name is required")
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if !mgr.hasLocked(name) {
		mgr.order = append(mgr.order, name)
	}
	mgr.profiles[name] = p.Clone()
	mgr.active = name
	return nil
}

// SaveProfile replaces the named profile and persists the whole document.
func (mgr *ProfileManager) SaveProfile(name string, p Profile) error {
	if err := mgr.Put(name, p); err != nil {
		return err
	}
	return mgr.Save()
}

// Create inserts a blank profile and makes it active.
func (mgr *ProfileManager) Create(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Validation(component, "create", "profile name is required")
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if mgr.hasLocked(name) {
		return errors.Duplicate(component, "create", name)
	}
	mgr.profiles[name] = NewProfile()
	mgr.order = append(mgr.order, name)
	mgr.active = name
	return nil
}

// Copy deep-copies source under newName and makes the copy active.
func (mgr *ProfileManager) Copy(source, newName string) error {
	if strings.TrimSpace(source) == "" {
		return errors.Validation(component, "copy", "no profile selected to copy")
	}
	if strings.TrimSpace(newName) == "" {
		return errors.Validation(component, "copy", "profile name is required")
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	src, ok := mgr.profiles[source]
	if !ok {
		return errors.NotFound(component, "copy", source)
	}
	if mgr.hasLocked(newName) {
		return errors.Duplicate(component, "copy", newName)
	}
	mgr.profiles[newName] = src.Clone()
	mgr.order = append(mgr.order, newName)
	mgr.active = newName
	return nil
}

// Delete removes a profile. Deleting the active profile activates the first
// remaining one, or none when the store is empty.
func (mgr *ProfileManager) Delete(name string) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if !mgr.hasLocked(name) {
		return errors.NotFound(component, "delete", name)
	}
	delete(mgr.profiles, name)
	for i, n := range mgr.order {
		if n == name {
			mgr.order = append(mgr.order[:i], mgr.order[i+1:]...)
			break
		}
	}
	if mgr.active == name {
		mgr.active = ""
		if len(mgr.order) > 0 {
			mgr.active = mgr.order[0]
		}
	}
	return nil
}

// Select makes an existing profile active.
func (mgr *ProfileManager) Select(name string) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if !mgr.hasLocked(name) {
		return errors.NotFound(component, "select", name)
	}
	mgr.active = name
	return nil
}

// --- Getters ---

// Active returns the active profile name and a copy of its record.
func (mgr *ProfileManager) Active() (string, Profile, bool) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	if mgr.active == "" {
		return "", Profile{}, false
	}
	p, ok := mgr.profiles[mgr.active]
	if !ok {
		return "", Profile{}, false
	}
	return mgr.active, p.Clone(), true
}

// ActiveName returns the active profile name or "".
func (mgr *ProfileManager) ActiveName() string {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.active
}

// Get returns a copy of the named profile.
func (mgr *ProfileManager) Get(name string) (Profile, bool) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	p, ok := mgr.profiles[name]
	if !ok {
		return Profile{}, false
	}
	return p.Clone(), true
}

// Names returns profile names in store order.
func (mgr *ProfileManager) Names() []string {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return append([]string(nil), mgr.order...)
}

// Len returns the number of profiles.
func (mgr *ProfileManager) Len() int {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return len(mgr.order)
}

func (mgr *ProfileManager) hasLocked(name string) bool {
	_, ok := mgr.profiles[name]
	return ok
}
