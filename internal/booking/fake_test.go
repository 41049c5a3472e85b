package booking_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"roombook/internal/booking"
	"roombook/internal/model"
)

// fakeStore is an in-memory booking.Store that mirrors the SQL
// implementation's locking discipline: LockRoom takes a per-room mutex
// held until the transaction ends, so concurrent bookings for the same
// room serialize exactly like SELECT ... FOR UPDATE does.
type fakeStore struct {
	mu           sync.Mutex
	rooms        map[uint64]*model.Room
	users        map[string]*model.User
	reservations map[uint64]*model.Reservation
	nextID       uint64

	lockMu    sync.Mutex
	roomLocks map[uint64]*sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:        map[uint64]*model.Room{},
		users:        map[string]*model.User{},
		reservations: map[uint64]*model.Reservation{},
		roomLocks:    map[uint64]*sync.Mutex{},
	}
}

func (s *fakeStore) addRoom(id uint64, name string) *model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &model.Room{ID: id, Name: name, Capacity: 4, Equipment: []string{}}
	s.rooms[id] = r
	return r
}

func (s *fakeStore) addUser(email string, role model.Role) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: uint64(len(s.users) + 1), Email: email, Name: email, Role: role}
	s.users[email] = u
	return u
}

func (s *fakeStore) addReservation(roomID uint64, user *model.User, start, end time.Time) *model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := &model.Reservation{
		ID: s.nextID, RoomID: roomID, UserID: user.ID, UserEmail: user.Email,
		StartAt: start, EndAt: end,
	}
	if room, ok := s.rooms[roomID]; ok {
		r.RoomName = room.Name
	}
	s.reservations[r.ID] = r
	return r
}

func (s *fakeStore) roomLock(roomID uint64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.roomLocks[roomID] = l
	}
	return l
}

type fakeTx struct {
	s       *fakeStore
	locked  []*sync.Mutex
	pending []*model.Reservation
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx := &fakeTx{s: s}
	defer func() {
		for _, l := range tx.locked {
			l.Unlock()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	// Commit: make the buffered inserts visible while the room locks
	// are still held.
	s.mu.Lock()
	for _, r := range tx.pending {
		s.reservations[r.ID] = r
	}
	s.mu.Unlock()
	return nil
}

func (t *fakeTx) LockRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
	l := t.s.roomLock(roomID)
	l.Lock()
	t.locked = append(t.locked, l)
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	room, ok := t.s.rooms[roomID]
	if !ok {
		return nil, booking.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (t *fakeTx) ListConflicting(ctx context.Context, roomID uint64, start, end time.Time) ([]model.Reservation, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []model.Reservation
	for _, r := range t.s.reservations {
		if r.RoomID == roomID && model.Overlaps(r.StartAt, r.EndAt, start, end) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (t *fakeTx) CountUserReservationsBetween(ctx context.Context, email string, from, to time.Time) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var n int64
	for _, r := range t.s.reservations {
		if r.UserEmail == email && !r.StartAt.Before(from) && !r.StartAt.After(to) {
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.nextID++
	r.ID = t.s.nextID
	cp := *r
	t.pending = append(t.pending, &cp)
	return nil
}

func (s *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, booking.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, booking.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) ListUserReservations(ctx context.Context, email string) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.UserEmail == email {
			out = append(out, *r)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *fakeStore) ListRoomReservations(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.RoomID == roomID {
			out = append(out, *r)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *fakeStore) DeleteReservation(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[id]; !ok {
		return booking.ErrReservationNotFound
	}
	delete(s.reservations, id)
	return nil
}

func (s *fakeStore) SetCalendarEventID(ctx context.Context, id uint64, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return booking.ErrReservationNotFound
	}
	r.CalendarEventID = &eventID
	return nil
}

func sortByStart(rs []model.Reservation) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].StartAt.Before(rs[j-1].StartAt); j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}

// fakeCalendar records event operations and can be told to fail.
type fakeCalendar struct {
	mu        sync.Mutex
	createErr error
	deleteErr error
	created   []booking.CalendarEvent
	deleted   []string
	nextID    int
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, ev booking.CalendarEvent, accessToken string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	f.created = append(f.created, ev)
	return "evt-" + string(rune('a'+f.nextID-1)), nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, eventID, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

// fakeCreds hands out a static token, or fails.
type fakeCreds struct {
	err error
}

func (f *fakeCreds) GetCredential(ctx context.Context, user *model.User) (booking.Credential, error) {
	if f.err != nil {
		return booking.Credential{}, f.err
	}
	return booking.Credential{AccessToken: "token-" + user.Email}, nil
}

var errCalendarDown = errors.New("calendar unreachable")
