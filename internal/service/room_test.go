package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/twoofus/server/internal/repository"
)

func TestRoomCreateAndJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.roomSvc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(room.InviteCode) != 8 {
		t.Errorf("invite code %q, want 8 characters", room.InviteCode)
	}

	joined, err := f.roomSvc.Join(ctx, "bob", " "+strings.ToLower(room.InviteCode)+" ")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if joined.ID != room.ID {
		t.Errorf("joined %s, want %s", joined.ID, room.ID)
	}

	if _, err := f.roomSvc.Join(ctx, "bob", room.InviteCode); err != nil {
		t.Errorf("second join by a member failed: %v", err)
	}

	_, err = f.roomSvc.Join(ctx, "carol", room.InviteCode)
	if !errors.Is(err, ErrRoomFull) {
		t.Errorf("third member got %v, want ErrRoomFull", err)
	}

	partner, err := f.roomSvc.Partner(ctx, room.ID, "alice")
	if err != nil || partner != "bob" {
		t.Errorf("Partner = %q, %v", partner, err)
	}

	if err := f.roomSvc.RequireMember(ctx, room.ID, "carol"); !errors.Is(err, repository.ErrNotMember) {
		t.Errorf("RequireMember(carol) = %v, want ErrNotMember", err)
	}

	_, err = f.roomSvc.Join(ctx, "dave", "NOPE2345")
	if !errors.Is(err, repository.ErrRoomNotFound) {
		t.Errorf("unknown code got %v, want ErrRoomNotFound", err)
	}
}

func TestRoomSetAnniversary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room, err := f.roomSvc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := f.roomSvc.SetAnniversary(ctx, room.ID, "15/06/2020"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad date got %v, want ErrInvalidInput", err)
	}
	if err := f.roomSvc.SetAnniversary(ctx, room.ID, "2020-06-15"); err != nil {
		t.Fatalf("SetAnniversary failed: %v", err)
	}

	got, err := f.roomSvc.Room(ctx, room.ID)
	if err != nil {
		t.Fatalf("Room failed: %v", err)
	}
	if got.AnniversaryDate == nil || *got.AnniversaryDate != "2020-06-15" {
		t.Errorf("anniversary = %v", got.AnniversaryDate)
	}

	if err := f.roomSvc.SetAnniversary(ctx, room.ID, ""); err != nil {
		t.Fatalf("clearing failed: %v", err)
	}
	got, _ = f.roomSvc.Room(ctx, room.ID)
	if got.AnniversaryDate != nil {
		t.Errorf("anniversary not cleared: %v", *got.AnniversaryDate)
	}
}
