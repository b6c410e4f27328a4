package test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/dayoadeyemi/haven/core/enquiry"
	"github.com/dayoadeyemi/haven/core/property"
)

func newListing(title string, price float64) property.PropertyNew {
	return property.PropertyNew{
		Title:        title,
		Type:         "SELL",
		Description:  "A fine property",
		State:        "Lagos",
		Country:      "Nigeria",
		Location:     "Lekki",
		Bedroom:      3,
		Bathroom:     2,
		Size:         140,
		MainImageURL: "https://img.test/main.jpg",
		Price:        price,
		IsPublished:  true,
	}
}

func TestListingLifecycle(t *testing.T) {
	env := NewTestEnv(t, "listing_test")

	_, atok1 := env.seedUser(t, claims.RoleAgent)
	_, atok2 := env.seedUser(t, claims.RoleAgent)
	_, btok := env.seedUser(t, claims.RoleRenterBuyer)
	_, admTok := env.seedUser(t, claims.RoleAdmin)

	w := env.request(t, http.MethodPost, "/properties", atok1, newListing("Lekki duplex", 900.00))
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("creating listing: status %s", w.Status)
	}
	var p property.Property
	decodeBody(t, w, &p)

	// Buyers cannot create listings.
	w = env.request(t, http.MethodPost, "/properties", btok, newListing("Buyer listing", 1.00))
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("buyer creating listing: status %s, want 403", w.Status)
	}
	w.Body.Close()

	// Anonymous browsing works.
	w = env.request(t, http.MethodGet, "/properties", "", nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("listing anonymously: status %s", w.Status)
	}
	var ps []property.Property
	decodeBody(t, w, &ps)
	if len(ps) != 1 {
		t.Fatalf("anonymous list has %d listings, want 1", len(ps))
	}

	w = env.request(t, http.MethodGet, "/properties/"+p.ID, "", nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("showing listing anonymously: status %s", w.Status)
	}
	w.Body.Close()

	// Price filters narrow the search; garbage bounds are ignored.
	w = env.request(t, http.MethodGet, "/properties?min_price=1000", "", nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("filtered list: status %s", w.Status)
	}
	decodeBody(t, w, &ps)
	if len(ps) != 0 {
		t.Fatalf("min_price=1000 list has %d listings, want 0", len(ps))
	}

	w = env.request(t, http.MethodGet, "/properties?min_price=abc&search=duplex", "", nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("list with bad min_price: status %s", w.Status)
	}
	decodeBody(t, w, &ps)
	if len(ps) != 1 {
		t.Fatalf("search=duplex list has %d listings, want 1", len(ps))
	}

	// Another agent cannot touch the listing.
	up := map[string]any{"price": 800.00}
	w = env.request(t, http.MethodPut, "/properties/"+p.ID, atok2, up)
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign agent updating listing: status %s, want 403", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodDelete, "/properties/"+p.ID, atok2, nil)
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign agent deleting listing: status %s, want 403", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPut, "/properties/"+p.ID, atok1, up)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("updating own listing: status %s", w.Status)
	}
	decodeBody(t, w, &p)
	if p.Price != 800.00 {
		t.Fatalf("updated price %v, want 800.00", p.Price)
	}

	// Soft delete hides the listing from the public.
	w = env.request(t, http.MethodDelete, "/properties/"+p.ID, atok1, nil)
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("deleting own listing: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodGet, "/properties/"+p.ID, "", nil)
	if w.StatusCode != http.StatusNotFound {
		t.Fatalf("showing deleted listing anonymously: status %s, want 404", w.Status)
	}
	w.Body.Close()

	// Admins still see it, everywhere.
	w = env.request(t, http.MethodGet, "/properties/"+p.ID, admTok, nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("showing deleted listing as admin: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodGet, "/properties", admTok, nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("listing as admin: status %s", w.Status)
	}
	decodeBody(t, w, &ps)
	if len(ps) != 1 {
		t.Fatalf("admin list has %d listings, want 1", len(ps))
	}

	// Restore puts it back on the market; restoring twice is an error.
	w = env.request(t, http.MethodPatch, "/admin/properties/"+p.ID+"/restore", admTok, nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("restoring listing: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPatch, "/admin/properties/"+p.ID+"/restore", admTok, nil)
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("restoring active listing: status %s, want 400", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodGet, "/properties/"+p.ID, "", nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("showing restored listing: status %s", w.Status)
	}
	w.Body.Close()

	// Hard delete is admin territory and final.
	w = env.request(t, http.MethodDelete, "/admin/properties/"+p.ID, atok1, nil)
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("agent hard-deleting: status %s, want 403", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodDelete, "/admin/properties/"+p.ID, admTok, nil)
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("hard-deleting listing: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodGet, "/properties/"+p.ID, admTok, nil)
	if w.StatusCode != http.StatusNotFound {
		t.Fatalf("showing purged listing: status %s, want 404", w.Status)
	}
	w.Body.Close()
}

func TestEnquiryFlow(t *testing.T) {
	env := NewTestEnv(t, "enquiry_test")

	agent, atok := env.seedUser(t, claims.RoleAgent)
	_, btok := env.seedUser(t, claims.RoleRenterBuyer)
	p := env.seedProperty(t, agent.ID, 300.00)

	body := enquiry.EnquiryNew{
		Subject: "Viewing request",
		Message: "Is the flat available for viewing this weekend?",
	}

	// Agents do not enquire.
	w := env.request(t, http.MethodPost, fmt.Sprintf("/properties/%s/enquiries", p.ID), atok, body)
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("agent creating enquiry: status %s, want 403", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, fmt.Sprintf("/properties/%s/enquiries", p.ID), btok, body)
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("creating enquiry: status %s", w.Status)
	}
	var e enquiry.Enquiry
	decodeBody(t, w, &e)
	if e.AgentID != agent.ID {
		t.Fatalf("enquiry addressed to %s, want %s", e.AgentID, agent.ID)
	}

	// It shows up on both sides.
	w = env.request(t, http.MethodGet, "/enquiries/agent", atok, nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("listing agent enquiries: status %s", w.Status)
	}
	var es []enquiry.Enquiry
	decodeBody(t, w, &es)
	if len(es) != 1 {
		t.Fatalf("agent has %d enquiries, want 1", len(es))
	}

	w = env.request(t, http.MethodGet, "/enquiries/mine", btok, nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("listing own enquiries: status %s", w.Status)
	}
	decodeBody(t, w, &es)
	if len(es) != 1 {
		t.Fatalf("buyer has %d enquiries, want 1", len(es))
	}

	// Only the listing's agent may reply.
	_, otherTok := env.seedUser(t, claims.RoleAgent)
	reply := enquiry.ReplyUp{Reply: "Yes, Saturday at noon works."}

	w = env.request(t, http.MethodPost, fmt.Sprintf("/enquiries/%s/reply", e.ID), otherTok, reply)
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign agent replying: status %s, want 403", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, fmt.Sprintf("/enquiries/%s/reply", e.ID), atok, reply)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("replying to enquiry: status %s", w.Status)
	}
	decodeBody(t, w, &e)
	if e.Reply == nil || *e.Reply != reply.Reply {
		t.Fatal("reply was not recorded")
	}
	if e.RepliedAt == nil {
		t.Fatal("reply timestamp was not recorded")
	}
}
