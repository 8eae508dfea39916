package todo

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identity string

func (i identity) CurrentUser(context.Context) (string, error) {
	if i == "" {
		return "", errors.New("not authenticated")
	}
	return string(i), nil
}

type fakeRemote struct {
	mu      sync.Mutex
	items   []Item
	created int
	calls   map[string]int
	err     error
	gates   map[string][]chan struct{}
	arrived chan string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		calls:   map[string]int{},
		gates:   map[string][]chan struct{}{},
		arrived: make(chan string, 10),
	}
}

// gate holds the next call of op, once its result is computed, until the returned channel is closed.
func (f *fakeRemote) gate(op string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan struct{})
	f.gates[op] = append(f.gates[op], ch)
	return ch
}

func (f *fakeRemote) wait(op string) {
	f.mu.Lock()
	var ch chan struct{}
	if gates := f.gates[op]; len(gates) > 0 {
		ch = gates[0]
		f.gates[op] = gates[1:]
	}
	f.mu.Unlock()

	if ch != nil {
		f.arrived <- op
		<-ch
	}
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *fakeRemote) List(_ context.Context, owner string) ([]Item, error) {
	f.mu.Lock()
	f.calls["list"]++
	if f.err != nil {
		f.mu.Unlock()
		return nil, f.err
	}
	var items []Item
	for _, item := range f.items {
		if item.Owner == owner {
			items = append(items, item)
		}
	}
	f.mu.Unlock()

	f.wait("list")
	return items, nil
}

func (f *fakeRemote) Create(_ context.Context, description, owner string) (Item, error) {
	f.mu.Lock()
	f.calls["create"]++
	if f.err != nil {
		f.mu.Unlock()
		return Item{}, f.err
	}
	f.created++
	name := fmt.Sprintf("Todo #%d", f.created)
	item := Item{
		ID:          fmt.Sprintf("id-%d", f.created),
		Name:        &name,
		Description: description,
		Owner:       owner,
	}
	f.items = append(f.items, item)
	f.mu.Unlock()

	f.wait("create")
	return item, nil
}

func (f *fakeRemote) Update(_ context.Context, id, description string) (Item, error) {
	f.mu.Lock()
	f.calls["update"]++
	if f.err != nil {
		f.mu.Unlock()
		return Item{}, f.err
	}
	var item Item
	var found bool
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Description = description
			item, found = f.items[i], true
		}
	}
	f.mu.Unlock()

	if !found {
		return Item{}, errors.New("The conditional request failed")
	}

	f.wait("update")
	return item, nil
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	f.calls["delete"]++
	if f.err != nil {
		f.mu.Unlock()
		return f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	f.mu.Unlock()

	f.wait("delete")
	return nil
}

func (f *fakeRemote) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = err
}

func setup(policy Policy) (*Synchronizer, *fakeRemote, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	remote := newFakeRemote()
	return New(identity("alice"), remote, log, policy), remote, hook
}

func errorEntries(hook *test.Hook) []logrus.Entry {
	var entries []logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			entries = append(entries, *entry)
		}
	}
	return entries
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("")
	assert.NoError(t, err)
	assert.Equal(t, PolicyLocal, policy)

	policy, err = ParsePolicy("refetch")
	assert.NoError(t, err)
	assert.Equal(t, PolicyRefetch, policy)

	_, err = ParsePolicy("eventually")
	assert.EqualError(t, err, "unsupported reconcile policy: eventually")
}

func TestSynchronizer_Scenario(t *testing.T) {
	for _, policy := range []Policy{PolicyLocal, PolicyRefetch} {
		t.Run(string(policy), func(t *testing.T) {
			ctx := context.Background()
			s, _, hook := setup(policy)

			assert.True(t, s.FetchAll(ctx))
			assert.Empty(t, s.Items())

			assert.True(t, s.Create(ctx, "Buy milk"))
			items := s.Items()
			require.Len(t, items, 1)
			assert.Equal(t, "Buy milk", items[0].Description)
			assert.Equal(t, "alice", items[0].Owner)
			assert.NotEmpty(t, items[0].ID)
			assert.Equal(t, "Todo #1", items[0].DisplayName())

			id := items[0].ID
			assert.True(t, s.Update(ctx, id, "Buy oat milk"))
			items = s.Items()
			require.Len(t, items, 1)
			assert.Equal(t, "Buy oat milk", items[0].Description)
			assert.Equal(t, "alice", items[0].Owner)

			assert.True(t, s.Delete(ctx, id))
			assert.Empty(t, s.Items())
			assert.Empty(t, errorEntries(hook))
		})
	}
}

func TestSynchronizer_CreateThenFetch(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	remote.items = []Item{{ID: "bob-1", Description: "Bob's", Owner: "bob"}}
	require.True(t, s.FetchAll(ctx))
	before := s.Items()

	for _, description := range []string{"Buy milk", " padded ", "🥛"} {
		require.True(t, s.Create(ctx, description))
		require.True(t, s.FetchAll(ctx))

		items := s.Items()
		assert.Len(t, items, len(before)+1)

		var matching int
		for _, item := range items {
			assert.Equal(t, "alice", item.Owner)
			if item.Description == description {
				matching++
			}
		}
		assert.Equal(t, 1, matching)
		before = items
	}
}

func TestSynchronizer_CreateBlank(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	require.True(t, s.Create(ctx, "Buy milk"))
	before := s.Items()

	for _, description := range []string{"", " ", "\t\n", "   "} {
		s.SetDraft(description)
		assert.False(t, s.Submit(ctx))
		assert.Equal(t, description, s.Draft())
		assert.Equal(t, before, s.Items())
	}
	assert.Equal(t, 1, remote.count("create"))
	assert.Equal(t, 0, remote.count("list"))
}

func TestSynchronizer_CreateDraft(t *testing.T) {
	ctx := context.Background()
	s, remote, hook := setup(PolicyLocal)

	s.SetDraft("Buy milk")
	remote.fail(errors.New("network is unreachable"))
	assert.False(t, s.Submit(ctx))
	assert.Equal(t, "Buy milk", s.Draft())
	assert.Empty(t, s.Items())

	entries := errorEntries(hook)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "create", entries[0].Data["op"])
		assert.EqualError(t, entries[0].Data[logrus.ErrorKey].(error), "network is unreachable")
	}

	remote.fail(nil)
	assert.True(t, s.Submit(ctx))
	assert.Empty(t, s.Draft())
	assert.Len(t, s.Items(), 1)

	// Text typed while the creation is in flight is kept.
	release := remote.gate("create")
	s.SetDraft("Buy bread")
	done := make(chan bool)
	go func() { done <- s.Submit(ctx) }()
	<-remote.arrived
	s.SetDraft("Buy butter")
	close(release)
	assert.True(t, <-done)
	assert.Equal(t, "Buy butter", s.Draft())
	assert.Len(t, s.Items(), 2)
}

func TestSynchronizer_CreateUnauthenticated(t *testing.T) {
	ctx := context.Background()
	log, hook := test.NewNullLogger()
	remote := newFakeRemote()
	s := New(identity(""), remote, log, PolicyLocal)

	assert.False(t, s.Create(ctx, "Buy milk"))
	assert.False(t, s.FetchAll(ctx))
	assert.Equal(t, 0, remote.count("create"))
	assert.Equal(t, 0, remote.count("list"))
	assert.Len(t, errorEntries(hook), 2)
}

func TestSynchronizer_CreateAlreadyFetched(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	release := remote.gate("create")
	done := make(chan bool)
	go func() { done <- s.Create(ctx, "Buy milk") }()
	<-remote.arrived

	require.True(t, s.FetchAll(ctx))
	require.Len(t, s.Items(), 1)

	close(release)
	assert.True(t, <-done)
	assert.Len(t, s.Items(), 1)
}

func TestSynchronizer_Delete(t *testing.T) {
	ctx := context.Background()
	s, remote, hook := setup(PolicyLocal)

	require.True(t, s.Create(ctx, "one"))
	require.True(t, s.Create(ctx, "two"))
	require.True(t, s.Create(ctx, "three"))
	items := s.Items()

	assert.True(t, s.Delete(ctx, items[1].ID))
	assert.Equal(t, []Item{items[0], items[2]}, s.Items())

	remote.fail(errors.New("Not Authorized to access deleteTodo on type Todo"))
	assert.False(t, s.Delete(ctx, items[0].ID))
	assert.Equal(t, []Item{items[0], items[2]}, s.Items())

	entries := errorEntries(hook)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "delete", entries[0].Data["op"])
		assert.Equal(t, items[0].ID, entries[0].Data["id"])
	}
}

func TestSynchronizer_UpdateFromEdit(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(PolicyLocal)

	require.True(t, s.Create(ctx, "Buy milk"))
	require.True(t, s.Create(ctx, "Buy bread"))
	before := s.Items()
	target := before[0]

	require.True(t, s.BeginEdit(target.ID))
	id, text, ok := s.Editing()
	assert.True(t, ok)
	assert.Equal(t, target.ID, id)
	assert.Equal(t, "Buy milk", text)

	s.SetEditText("")
	assert.True(t, s.SaveEdit(ctx))

	items := s.Items()
	expected := target
	expected.Description = ""
	assert.Equal(t, expected, items[0])
	assert.Equal(t, before[1], items[1])

	_, _, ok = s.Editing()
	assert.False(t, ok)
	assert.False(t, s.SaveEdit(ctx))
}

func TestSynchronizer_UpdateFailure(t *testing.T) {
	ctx := context.Background()
	s, remote, hook := setup(PolicyLocal)

	require.True(t, s.Create(ctx, "Buy milk"))
	before := s.Items()

	require.True(t, s.BeginEdit(before[0].ID))
	s.SetEditText("Buy oat milk")

	remote.fail(errors.New("Request failed with status code 401"))
	assert.False(t, s.SaveEdit(ctx))
	assert.Equal(t, before, s.Items())

	id, text, ok := s.Editing()
	assert.True(t, ok)
	assert.Equal(t, before[0].ID, id)
	assert.Equal(t, "Buy oat milk", text)

	entries := errorEntries(hook)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "update", entries[0].Data["op"])
		assert.Equal(t, before[0].ID, entries[0].Data["id"])
	}
}

func TestSynchronizer_CancelEdit(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	require.True(t, s.Create(ctx, "Buy milk"))
	before := s.Items()

	require.True(t, s.BeginEdit(before[0].ID))
	s.SetEditText("Buy oat milk")
	s.CancelEdit()

	assert.Equal(t, before, s.Items())
	_, _, ok := s.Editing()
	assert.False(t, ok)
	assert.Equal(t, 0, remote.count("update"))

	assert.False(t, s.BeginEdit("unknown"))
	s.SetEditText("ignored")
	_, text, ok := s.Editing()
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestSynchronizer_LastFocusWins(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(PolicyLocal)

	require.True(t, s.Create(ctx, "one"))
	require.True(t, s.Create(ctx, "two"))
	items := s.Items()

	require.True(t, s.BeginEdit(items[0].ID))
	s.SetEditText("one edited")
	require.True(t, s.BeginEdit(items[1].ID))

	id, text, _ := s.Editing()
	assert.Equal(t, items[1].ID, id)
	assert.Equal(t, "two", text)

	// Saving another item does not clear the edit slot.
	assert.True(t, s.Update(ctx, items[0].ID, "one updated"))
	id, _, ok := s.Editing()
	assert.True(t, ok)
	assert.Equal(t, items[1].ID, id)
}

func TestSynchronizer_FetchAll(t *testing.T) {
	ctx := context.Background()
	s, remote, hook := setup(PolicyLocal)

	remote.items = []Item{
		{ID: "1", Description: "one", Owner: "alice"},
		{ID: "2", Description: "two", Owner: "alice"},
	}

	require.True(t, s.FetchAll(ctx))
	first := s.Items()
	require.True(t, s.FetchAll(ctx))
	assert.Equal(t, first, s.Items())
	assert.Equal(t, remote.items, first)

	remote.fail(errors.New("network is unreachable"))
	assert.False(t, s.FetchAll(ctx))
	assert.Equal(t, first, s.Items())

	entries := errorEntries(hook)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "fetch", entries[0].Data["op"])
	}
}

func TestSynchronizer_OutOfOrderUpdates(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	require.True(t, s.Create(ctx, "Buy milk"))
	id := s.Items()[0].ID

	release := remote.gate("update")
	done := make(chan bool)
	go func() { done <- s.Update(ctx, id, "first") }()
	<-remote.arrived

	assert.True(t, s.Update(ctx, id, "second"))
	close(release)
	assert.False(t, <-done)

	assert.Equal(t, "second", s.Items()[0].Description)
}

func TestSynchronizer_DeleteWhileUpdating(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	require.True(t, s.Create(ctx, "Buy milk"))
	id := s.Items()[0].ID
	require.True(t, s.BeginEdit(id))

	release := remote.gate("update")
	done := make(chan bool)
	go func() { done <- s.SaveEdit(ctx) }()
	<-remote.arrived

	assert.True(t, s.Delete(ctx, id))
	assert.Empty(t, s.Items())
	_, _, ok := s.Editing()
	assert.False(t, ok)

	close(release)
	assert.False(t, <-done)
	assert.Empty(t, s.Items())
}

func TestSynchronizer_StaleFetch(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	remote.items = []Item{{ID: "1", Description: "one", Owner: "alice"}}

	release := remote.gate("list")
	done := make(chan bool)
	go func() { done <- s.FetchAll(ctx) }()
	<-remote.arrived

	// The held fetch computed its result before this deletion.
	assert.True(t, s.Delete(ctx, "1"))
	remote.items = append(remote.items, Item{ID: "2", Description: "two", Owner: "alice"})
	assert.True(t, s.FetchAll(ctx))

	close(release)
	assert.False(t, <-done)

	items := s.Items()
	if assert.Len(t, items, 1) {
		assert.Equal(t, "2", items[0].ID)
	}
}

func TestSynchronizer_FetchAfterDelete(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	remote.items = []Item{
		{ID: "1", Description: "one", Owner: "alice"},
		{ID: "2", Description: "two", Owner: "alice"},
	}

	release := remote.gate("list")
	done := make(chan bool)
	go func() { done <- s.FetchAll(ctx) }()
	<-remote.arrived

	assert.True(t, s.Delete(ctx, "1"))
	close(release)
	assert.True(t, <-done)

	items := s.Items()
	if assert.Len(t, items, 1) {
		assert.Equal(t, "2", items[0].ID)
	}
}

func TestSynchronizer_Policies(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		s, remote, _ := setup(PolicyLocal)
		require.True(t, s.Create(ctx, "Buy milk"))

		// Changed elsewhere, the local list silently diverges.
		remote.items = append(remote.items, Item{ID: "elsewhere", Description: "Buy bread", Owner: "alice"})
		require.True(t, s.Create(ctx, "Buy butter"))

		assert.Len(t, s.Items(), 2)
		assert.Equal(t, 0, remote.count("list"))
	})

	t.Run("refetch", func(t *testing.T) {
		s, remote, _ := setup(PolicyRefetch)
		require.True(t, s.Create(ctx, "Buy milk"))
		assert.Equal(t, 1, remote.count("list"))

		remote.items = append(remote.items, Item{ID: "elsewhere", Description: "Buy bread", Owner: "alice"})
		require.True(t, s.Create(ctx, "Buy butter"))
		assert.Equal(t, 2, remote.count("list"))

		items := s.Items()
		require.Len(t, items, 3)
		assert.Equal(t, "elsewhere", items[1].ID)

		require.True(t, s.Update(ctx, items[0].ID, "Buy oat milk"))
		require.True(t, s.Delete(ctx, items[1].ID))
		assert.Equal(t, 4, remote.count("list"))

		items = s.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "Buy oat milk", items[0].Description)
		assert.Equal(t, "Buy butter", items[1].Description)
	})
}

func TestSynchronizer_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := setup(PolicyLocal)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Create(ctx, "Buy milk")
		}()
	}
	wg.Wait()

	assert.Len(t, s.Items(), 10)
	assert.Equal(t, 10, remote.count("create"))
}
