// Package roster in-memory patient list shared by the dashboard views
package roster

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	parser "github.com/pulso-odonto/go-br-patient-parser"
)

// ErrNotFound no patient with the given id
var ErrNotFound = errors.New("patient not found")

// Query patient list filter. MaxAge 0 means no upper bound.
type Query struct {
	Search string
	MinAge int
	MaxAge int
}

// matches case-insensitive name substring and inclusive age range
func (q Query) matches(p parser.PatientRecord) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
		return false
	}
	if p.Age < q.MinAge {
		return false
	}
	if q.MaxAge > 0 && p.Age > q.MaxAge {
		return false
	}
	return true
}

// Roster ordered patient list with selection and ghost marks
type Roster struct {
	mu       sync.RWMutex
	patients []parser.PatientRecord
	index    map[string]int
	selected map[string]struct{}
	ghosts   map[string]struct{}
}

// New creates an empty roster
func New() *Roster {
	return &Roster{
		index:    make(map[string]int),
		selected: make(map[string]struct{}),
		ghosts:   make(map[string]struct{}),
	}
}

// Append concatenates an import batch and clears the selection.
// Records are not merged with existing ones. An id already in the roster
// (two batches in the same millisecond) is rewritten in batch with a
// numeric suffix. Returns the new size.
func (r *Roster) Append(batch []parser.PatientRecord) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range batch {
		batch[i].ID = r.uniqueID(batch[i].ID)
		r.index[batch[i].ID] = len(r.patients)
		r.patients = append(r.patients, batch[i])
	}
	r.selected = make(map[string]struct{})
	return len(r.patients)
}

// uniqueID id, or id-2, id-3... when taken. Caller holds the lock.
func (r *Roster) uniqueID(id string) string {
	if _, taken := r.index[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, taken := r.index[candidate]; !taken {
			return candidate
		}
	}
}

// Len number of patients
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patients)
}

// List copy of all patients in import order
func (r *Roster) List() []parser.PatientRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]parser.PatientRecord, len(r.patients))
	copy(out, r.patients)
	return out
}

// Get patient by id
func (r *Roster) Get(id string) (parser.PatientRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return parser.PatientRecord{}, ErrNotFound
	}
	return r.patients[i], nil
}

// Filter patients matching q, in import order
func (r *Roster) Filter(q Query) []parser.PatientRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []parser.PatientRecord{}
	for _, p := range r.patients {
		if q.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// ============================================================================
// Selection
// ============================================================================

// Toggle flips the selection of one patient and reports the new state
func (r *Roster) Toggle(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; !ok {
		return false, ErrNotFound
	}
	if _, ok := r.selected[id]; ok {
		delete(r.selected, id)
		return false, nil
	}
	r.selected[id] = struct{}{}
	return true, nil
}

// SelectAll replaces the selection with the given ids; unknown ids are ignored
func (r *Roster) SelectAll(ids []string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selected = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.index[id]; ok {
			r.selected[id] = struct{}{}
		}
	}
	return len(r.selected)
}

// ClearSelection deselects everyone
func (r *Roster) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = make(map[string]struct{})
}

// IsSelected reports whether id is selected
func (r *Roster) IsSelected(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.selected[id]
	return ok
}

// Selected selected patients in import order
func (r *Roster) Selected() []parser.PatientRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []parser.PatientRecord{}
	for _, p := range r.patients {
		if _, ok := r.selected[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ============================================================================
// Ghost marks
// ============================================================================

// ToggleGhost flips the ghost mark of one patient and reports the new state.
// Ghost patients are kept in the list but skipped by outreach.
func (r *Roster) ToggleGhost(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; !ok {
		return false, ErrNotFound
	}
	if _, ok := r.ghosts[id]; ok {
		delete(r.ghosts, id)
		return false, nil
	}
	r.ghosts[id] = struct{}{}
	return true, nil
}

// IsGhost reports whether id carries a ghost mark
func (r *Roster) IsGhost(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ghosts[id]
	return ok
}
