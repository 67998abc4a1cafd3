package members

import (
	"context"
	"errors"
	"testing"

	"serotonyl.ru/wallet-bot/internal/common"
)

type memStore struct {
	members map[int64]*Member
}

func newMemStore() *memStore { return &memStore{members: map[int64]*Member{}} }

func (m *memStore) Create(_ context.Context, mem *Member) error {
	cp := *mem
	m.members[mem.UserID] = &cp
	return nil
}

func (m *memStore) GetByUserID(_ context.Context, userID int64) (*Member, error) {
	mem, ok := m.members[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return mem, nil
}

func (m *memStore) GetByUsername(_ context.Context, username string) (*Member, error) {
	for _, mem := range m.members {
		if mem.Username == username {
			return mem, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (m *memStore) Exists(_ context.Context, userID int64) (bool, error) {
	mem, ok := m.members[userID]
	return ok && !mem.IsBanned, nil
}

func (m *memStore) UpdateInfo(_ context.Context, userID int64, info UpdateInfo) error {
	mem := m.members[userID]
	mem.Username, mem.FirstName, mem.LastName = info.Username, info.FirstName, info.LastName
	return nil
}

func (m *memStore) SetAdmin(_ context.Context, userID int64, isAdmin bool) error {
	m.members[userID].IsAdmin = isAdmin
	return nil
}

func TestHandleNewMemberRunsJoinHooksOnce(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, func(id int64) bool { return id == 1 })

	var joined []int64
	svc.OnJoin(func(_ context.Context, userID int64) error {
		joined = append(joined, userID)
		return nil
	})
	svc.OnJoin(func(context.Context, int64) error { return errors.New("boom") })

	ctx := context.Background()
	if err := svc.HandleNewMember(ctx, 1, "neo", "Thomas", ""); err != nil {
		t.Fatalf("HandleNewMember: %v", err)
	}
	if err := svc.HandleNewMember(ctx, 1, "the_one", "Thomas", "Anderson"); err != nil {
		t.Fatalf("HandleNewMember (rejoin): %v", err)
	}

	if len(joined) != 1 {
		t.Errorf("join hook must run only for new members, got %v", joined)
	}
	m := store.members[1]
	if m.Username != "the_one" || !m.IsAdmin {
		t.Errorf("unexpected member after rejoin: %+v", m)
	}
	if m.DisplayName() != "@the_one" {
		t.Errorf("unexpected display name %q", m.DisplayName())
	}
}

func TestEnsureMemberSyncsAdminFlag(t *testing.T) {
	store := newMemStore()
	admins := map[int64]bool{}
	svc := NewService(store, func(id int64) bool { return admins[id] })
	ctx := context.Background()

	if err := svc.EnsureMember(ctx, 7, "", "Trinity", ""); err != nil {
		t.Fatalf("EnsureMember: %v", err)
	}
	if store.members[7].IsAdmin {
		t.Fatal("member must not be admin yet")
	}

	admins[7] = true
	if err := svc.EnsureMember(ctx, 7, "", "Trinity", ""); err != nil {
		t.Fatalf("EnsureMember: %v", err)
	}
	if !store.members[7].IsAdmin {
		t.Error("admin flag must follow ADMIN_IDS")
	}
	if store.members[7].DisplayName() != "Trinity" {
		t.Errorf("unexpected display name %q", store.members[7].DisplayName())
	}
}

func TestGetByUsernameStripsAt(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	svc.HandleNewMember(ctx, 3, "morpheus", "M", "")

	m, err := svc.GetByUsername(ctx, "@morpheus")
	if err != nil || m.UserID != 3 {
		t.Fatalf("Expected user 3, got %+v (%v)", m, err)
	}
	if _, err := svc.GetByUsername(ctx, "smith"); !errors.Is(err, common.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
