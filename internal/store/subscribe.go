package store

// Collection identifies one of the record collections for change
// notifications.
type Collection string

const (
	CollectionTimeBlocks      Collection = "timeBlocks"
	CollectionProjects        Collection = "projects"
	CollectionTeams           Collection = "teams"
	CollectionActiveTimers    Collection = "activeTimers"
	CollectionPreferences     Collection = "preferences"
	CollectionWeeklySummaries Collection = "weeklySummaries"
)

// Change describes a committed mutation to a collection. Rolled-back
// transactions never produce a Change.
type Change struct {
	Collection Collection
}

// Subscribe registers fn to run after every committed write to the store.
// Callbacks run synchronously on the mutating goroutine. The returned
// function removes the subscription; calling it twice is harmless.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(coll Collection) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(Change{Collection: coll})
	}
}

func (s *Store) notifyAll() {
	for _, coll := range []Collection{
		CollectionTimeBlocks, CollectionProjects, CollectionTeams,
		CollectionActiveTimers, CollectionPreferences, CollectionWeeklySummaries,
	} {
		s.notify(coll)
	}
}
