package core

// workspace.go holds the per-user application state.
//
// A Workspace carries what one browser session is working on: the selected
// parent requirement, the case being edited, the bulk-import buffer and the
// evidence file picked for upload. Workspaces live only in memory; the store
// evicts the least recently used one when it is full.

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultWorkspaceCacheSize bounds the number of live sessions.
const DefaultWorkspaceCacheSize = 1024

// PendingFile describes the evidence file selected for the next upload.
type PendingFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Workspace is the state of one user session. It is safe for concurrent use.
type Workspace struct {
	id string

	mu         sync.Mutex
	parentID   string
	editingKey string
	staged     *PasteResult
	pending    *PendingFile
}

// NewWorkspace creates an empty workspace with the given session id.
func NewWorkspace(id string) *Workspace {
	return &Workspace{id: id}
}

// ID returns the session id.
func (w *Workspace) ID() string {
	return w.id
}

// ParentID returns the selected parent requirement, or "".
func (w *Workspace) ParentID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.parentID
}

// SetParent selects the parent requirement. An empty id clears it.
func (w *Workspace) SetParent(id string) {
	w.mu.Lock()
	w.parentID = id
	w.mu.Unlock()
}

// EditingKey returns the key of the case being edited or deleted, or "".
func (w *Workspace) EditingKey() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editingKey
}

// BeginEdit marks key as the edit/delete target.
func (w *Workspace) BeginEdit(key string) {
	w.mu.Lock()
	w.editingKey = key
	w.mu.Unlock()
}

// EndEdit clears the edit/delete target.
func (w *Workspace) EndEdit() {
	w.BeginEdit("")
}

// StageImport replaces the bulk-import buffer with res.
func (w *Workspace) StageImport(res PasteResult) {
	w.mu.Lock()
	w.staged = &res
	w.mu.Unlock()
}

// Staged returns the buffered import without consuming it.
func (w *Workspace) Staged() (PasteResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.staged == nil {
		return PasteResult{}, false
	}
	return *w.staged, true
}

// TakeImport returns the buffered records and clears the buffer.
// It returns ErrNothingStaged when the buffer is empty.
func (w *Workspace) TakeImport() ([]TestCaseRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.staged == nil || len(w.staged.Records) == 0 {
		return nil, ErrNothingStaged
	}
	records := w.staged.Records
	w.staged = nil
	return records, nil
}

// ClearImport drops the bulk-import buffer.
func (w *Workspace) ClearImport() {
	w.mu.Lock()
	w.staged = nil
	w.mu.Unlock()
}

// SetPendingEvidence records the file picked for the next evidence upload.
func (w *Workspace) SetPendingEvidence(name string, size int64) {
	w.mu.Lock()
	w.pending = &PendingFile{Name: name, Size: size}
	w.mu.Unlock()
}

// PendingEvidence returns the picked evidence file, if any.
func (w *Workspace) PendingEvidence() (PendingFile, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return PendingFile{}, false
	}
	return *w.pending, true
}

// ClearPendingEvidence forgets the picked evidence file.
func (w *Workspace) ClearPendingEvidence() {
	w.mu.Lock()
	w.pending = nil
	w.mu.Unlock()
}

// WorkspaceStore keeps workspaces in a bounded LRU cache keyed by session id.
type WorkspaceStore struct {
	cache *lru.Cache[string, *Workspace]
}

// NewWorkspaceStore creates a store holding at most size workspaces.
// A non-positive size uses DefaultWorkspaceCacheSize.
func NewWorkspaceStore(size int) (*WorkspaceStore, error) {
	if size <= 0 {
		size = DefaultWorkspaceCacheSize
	}
	cache, err := lru.New[string, *Workspace](size)
	if err != nil {
		return nil, fmt.Errorf("create workspace cache: %w", err)
	}
	return &WorkspaceStore{cache: cache}, nil
}

// Get returns the workspace for id if it is still cached.
func (s *WorkspaceStore) Get(id string) (*Workspace, bool) {
	if id == "" {
		return nil, false
	}
	return s.cache.Get(id)
}

// Create starts a workspace under a fresh session id.
func (s *WorkspaceStore) Create() *Workspace {
	ws := NewWorkspace(uuid.NewString())
	s.cache.Add(ws.id, ws)
	return ws
}

// Load returns the workspace for id, creating a new one when id is unknown,
// malformed or evicted. created reports whether a new session id was issued.
func (s *WorkspaceStore) Load(id string) (ws *Workspace, created bool) {
	if _, err := uuid.Parse(id); err == nil {
		if ws, ok := s.cache.Get(id); ok {
			return ws, false
		}
	}
	return s.Create(), true
}

// Remove drops the workspace for id.
func (s *WorkspaceStore) Remove(id string) {
	s.cache.Remove(id)
}

// Len returns the number of cached workspaces.
func (s *WorkspaceStore) Len() int {
	return s.cache.Len()
}
