package todo

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// A Synchronizer owns the local todo list of the authenticated user, a pending-creation buffer
// and a single edit slot. Failures of the remote service are logged and swallowed: each operation
// only reports whether the local state changed.
//
// Remote calls are performed without holding the lock so operations can be issued concurrently.
// Their responses are sequenced per item:
//   - an update response is dropped when a newer update of the same item has already been applied;
//   - a deleted item is never brought back by a late update or fetch response;
//   - a fetch response is dropped when a newer fetch was issued.
type Synchronizer struct {
	identity Identity
	remote   Remote
	log      logrus.FieldLogger
	policy   Policy

	mu         sync.Mutex
	items      []Item
	draft      string
	editing    string
	editText   string
	generation uint64
	tickets    map[string]uint64
	applied    map[string]uint64
	tombstones map[string]bool
}

// New returns a new Synchronizer.
func New(identity Identity, remote Remote, log logrus.FieldLogger, policy Policy) *Synchronizer {
	if policy == "" {
		policy = PolicyLocal
	}

	return &Synchronizer{
		identity:   identity,
		remote:     remote,
		log:        log,
		policy:     policy,
		items:      []Item{},
		tickets:    map[string]uint64{},
		applied:    map[string]uint64{},
		tombstones: map[string]bool{},
	}
}

// Items returns a snapshot of the local list.
func (s *Synchronizer) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

///// Fetch
////
//

// FetchAll replaces the local list by all the items owned by the authenticated user.
// On failure the local list is left unchanged.
func (s *Synchronizer) FetchAll(ctx context.Context) bool {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	log := s.log.WithField("op", "fetch")

	owner, err := s.identity.CurrentUser(ctx)
	if err != nil {
		log.WithError(err).Error("could not get current user")
		return false
	}

	items, err := s.remote.List(ctx, owner)
	if err != nil {
		log.WithError(err).Error("could not fetch todos")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		log.Debug("stale response dropped")
		return false
	}

	s.items = make([]Item, 0, len(items))
	for _, item := range items {
		if s.tombstones[item.ID] {
			continue
		}
		s.items = append(s.items, item)
	}

	log.Debugf("%d todos fetched", len(s.items))
	return true
}

///// Create
////
//

// Draft returns the pending-creation buffer.
func (s *Synchronizer) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft
}

// SetDraft sets the pending-creation buffer.
func (s *Synchronizer) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = text
}

// Submit creates an item from the pending-creation buffer.
func (s *Synchronizer) Submit(ctx context.Context) bool {
	return s.Create(ctx, s.Draft())
}

// Create creates an item owned by the authenticated user and appends it to the local list.
// An empty or blank description is ignored without contacting the remote service.
// On success the pending-creation buffer is cleared when it still holds the description,
// on failure it is kept for a retry.
func (s *Synchronizer) Create(ctx context.Context, description string) bool {
	if strings.TrimSpace(description) == "" {
		return false
	}

	log := s.log.WithField("op", "create")

	owner, err := s.identity.CurrentUser(ctx)
	if err != nil {
		log.WithError(err).Error("could not get current user")
		return false
	}

	item, err := s.remote.Create(ctx, description, owner)
	if err != nil {
		log.WithError(err).Error("could not create todo")
		return false
	}
	log = log.WithField("id", item.ID)

	s.mu.Lock()
	if s.draft == description {
		s.draft = ""
	}
	// A fetch may have already brought the item.
	if i := s.index(item.ID); i >= 0 {
		s.items[i] = item
	} else {
		s.items = append(s.items, item)
	}
	s.mu.Unlock()

	log.Debug("todo created")
	s.reconcile(ctx)
	return true
}

///// Update
////
//

// Update replaces the description of the item identified by id.
// An empty description is accepted.
// On success the edit slot is cleared when it still refers to the item,
// on failure the local list and the edit slot are left unchanged.
func (s *Synchronizer) Update(ctx context.Context, id, description string) bool {
	ticket := s.ticket(id)
	log := s.log.WithFields(logrus.Fields{"op": "update", "id": id})

	item, err := s.remote.Update(ctx, id, description)
	if err != nil {
		log.WithError(err).Error("could not update todo")
		return false
	}

	s.mu.Lock()
	if s.tombstones[id] {
		s.mu.Unlock()
		log.Debug("response of deleted todo dropped")
		return false
	}
	if ticket < s.applied[id] {
		s.mu.Unlock()
		log.Debug("stale response dropped")
		return false
	}
	s.applied[id] = ticket

	if i := s.index(id); i >= 0 {
		s.items[i].Description = item.Description
	}
	if s.editing == id {
		s.editing = ""
		s.editText = ""
	}
	s.mu.Unlock()

	log.Debug("todo updated")
	s.reconcile(ctx)
	return true
}

///// Delete
////
//

// Delete deletes the item identified by id and removes it from the local list.
// On failure the local list is left unchanged.
func (s *Synchronizer) Delete(ctx context.Context, id string) bool {
	s.ticket(id)
	log := s.log.WithFields(logrus.Fields{"op": "delete", "id": id})

	if err := s.remote.Delete(ctx, id); err != nil {
		log.WithError(err).Error("could not delete todo")
		return false
	}

	s.mu.Lock()
	s.tombstones[id] = true
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
	if s.editing == id {
		s.editing = ""
		s.editText = ""
	}
	s.mu.Unlock()

	log.Debug("todo deleted")
	s.reconcile(ctx)
	return true
}

///// Edit slot
////
//

// BeginEdit puts the item identified by id in edit mode, seeding the edit buffer with its description.
// The last focused item wins: pending edits of another item are discarded without warning.
func (s *Synchronizer) BeginEdit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false
	}

	s.editing = id
	s.editText = s.items[i].Description
	return true
}

// CancelEdit leaves edit mode without contacting the remote service.
func (s *Synchronizer) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editing = ""
	s.editText = ""
}

// SetEditText sets the edit buffer.
func (s *Synchronizer) SetEditText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing != "" {
		s.editText = text
	}
}

// Editing returns the item in edit mode and the edit buffer.
func (s *Synchronizer) Editing() (id, text string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editing, s.editText, s.editing != ""
}

// SaveEdit updates the item in edit mode with the edit buffer.
func (s *Synchronizer) SaveEdit(ctx context.Context) bool {
	id, text, ok := s.Editing()
	if !ok {
		return false
	}
	return s.Update(ctx, id, text)
}

//

func (s *Synchronizer) ticket(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets[id]++
	return s.tickets[id]
}

func (s *Synchronizer) index(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Synchronizer) reconcile(ctx context.Context) {
	if s.policy == PolicyRefetch {
		s.FetchAll(ctx)
	}
}
