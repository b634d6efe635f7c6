package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func TestCommunityLifecycle(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)

	ownerID := uuid.New()
	memberID := uuid.New()
	owner := bearerFor(t, ownerID, "olive")
	member := bearerFor(t, memberID, "mona")

	// Create.
	resp := doRequest(t, app, http.MethodPost, "/api/communities", owner,
		fiber.Map{"name": "Chess Club", "description": "All things chess"})
	wantStatus(t, resp, http.StatusCreated)

	var community struct {
		ID        uint       `json:"id"`
		Name      string     `json:"name"`
		CreatedBy *uuid.UUID `json:"created_by"`
	}
	decodeBody(t, resp, &community)
	if community.Name != "Chess Club" {
		t.Fatalf("unexpected community name %q", community.Name)
	}
	if community.CreatedBy == nil || *community.CreatedBy != ownerID {
		t.Fatalf("expected created_by %s, got %v", ownerID, community.CreatedBy)
	}
	base := fmt.Sprintf("/api/communities/%d", community.ID)

	// Duplicate name conflicts.
	resp = doRequest(t, app, http.MethodPost, "/api/communities", member, fiber.Map{"name": "Chess Club"})
	wantStatus(t, resp, http.StatusConflict)
	_ = resp.Body.Close()

	// The default chat room was provisioned at creation.
	resp = doRequest(t, app, http.MethodGet, base+"/chats", owner, nil)
	wantStatus(t, resp, http.StatusOK)
	var rooms []struct {
		Title string `json:"title"`
	}
	decodeBody(t, resp, &rooms)
	if len(rooms) != 1 || rooms[0].Title != "General" {
		t.Fatalf("expected a single General room, got %#v", rooms)
	}

	// Owner detail annotations.
	resp = doRequest(t, app, http.MethodGet, base, owner, nil)
	wantStatus(t, resp, http.StatusOK)
	var detail struct {
		MemberCount int64 `json:"member_count"`
		IsMember    bool  `json:"is_member"`
		IsOwner     bool  `json:"is_owner"`
	}
	decodeBody(t, resp, &detail)
	if !detail.IsOwner || !detail.IsMember || detail.MemberCount != 1 {
		t.Fatalf("unexpected owner detail: %+v", detail)
	}

	// Owner cannot join their own community.
	resp = doRequest(t, app, http.MethodPost, base+"/join", owner, nil)
	wantStatus(t, resp, http.StatusConflict)
	_ = resp.Body.Close()

	// Someone else joins.
	resp = doRequest(t, app, http.MethodPost, base+"/join", member, nil)
	wantStatus(t, resp, http.StatusCreated)
	var membership struct {
		Role string `json:"role"`
	}
	decodeBody(t, resp, &membership)
	if membership.Role != "member" {
		t.Fatalf("expected role member, got %q", membership.Role)
	}

	resp = doRequest(t, app, http.MethodGet, base+"/membership", member, nil)
	wantStatus(t, resp, http.StatusOK)
	var status struct {
		IsMember bool   `json:"is_member"`
		IsOwner  bool   `json:"is_owner"`
		Role     string `json:"role"`
	}
	decodeBody(t, resp, &status)
	if !status.IsMember || status.IsOwner || status.Role != "member" {
		t.Fatalf("unexpected membership status: %+v", status)
	}

	// Member listing synthesizes the owner entry first.
	resp = doRequest(t, app, http.MethodGet, base+"/members", member, nil)
	wantStatus(t, resp, http.StatusOK)
	var members []struct {
		MembershipID uint      `json:"membership_id"`
		UserID       uuid.UUID `json:"user_id"`
		Role         string    `json:"role"`
		IsOwner      bool      `json:"is_owner"`
	}
	decodeBody(t, resp, &members)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if !members[0].IsOwner || members[0].Role != "owner" || members[0].MembershipID != 0 || members[0].UserID != ownerID {
		t.Fatalf("unexpected owner entry: %+v", members[0])
	}

	// Owner promotes the member to admin.
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("%s/members/%s/role", base, memberID), owner,
		fiber.Map{"role": "admin"})
	wantStatus(t, resp, http.StatusOK)
	decodeBody(t, resp, &membership)
	if membership.Role != "admin" {
		t.Fatalf("expected role admin, got %q", membership.Role)
	}

	// Only the owner can rename or delete.
	resp = doRequest(t, app, http.MethodPut, base, member, fiber.Map{"name": "Chess Society"})
	wantStatus(t, resp, http.StatusForbidden)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPut, base, owner, fiber.Map{"name": "Chess Society"})
	wantStatus(t, resp, http.StatusOK)
	var renamed struct {
		Name string `json:"name"`
	}
	decodeBody(t, resp, &renamed)
	if renamed.Name != "Chess Society" {
		t.Fatalf("expected renamed community, got %q", renamed.Name)
	}

	// Member leaves; the owner cannot.
	resp = doRequest(t, app, http.MethodDelete, base+"/leave", member, nil)
	wantStatus(t, resp, http.StatusNoContent)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, base+"/leave", owner, nil)
	wantStatus(t, resp, http.StatusForbidden)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, base, owner, nil)
	wantStatus(t, resp, http.StatusNoContent)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, base, owner, nil)
	wantStatus(t, resp, http.StatusNotFound)
	_ = resp.Body.Close()
}

func TestMyCommunitiesIncludesOwned(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)

	ownerID := uuid.New()
	owner := bearerFor(t, ownerID, "olive")
	member := bearerFor(t, uuid.New(), "mona")

	resp := doRequest(t, app, http.MethodPost, "/api/communities", owner, fiber.Map{"name": "Chess Club"})
	wantStatus(t, resp, http.StatusCreated)
	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, resp, &created)

	resp = doRequest(t, app, http.MethodPost, "/api/communities", member, fiber.Map{"name": "Movies"})
	wantStatus(t, resp, http.StatusCreated)
	var movies struct {
		ID uint `json:"id"`
	}
	decodeBody(t, resp, &movies)

	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/communities/%d/join", movies.ID), owner, nil)
	wantStatus(t, resp, http.StatusCreated)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/users/me/communities", owner, nil)
	wantStatus(t, resp, http.StatusOK)
	var mine []struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	decodeBody(t, resp, &mine)

	roles := map[uint]string{}
	for _, c := range mine {
		roles[c.ID] = c.Role
	}
	if roles[created.ID] != "owner" || roles[movies.ID] != "member" {
		t.Fatalf("unexpected community roles: %#v", roles)
	}
}
