package smoketest

import (
	"context"
	"fmt"
	"net/http"
)

// run carries what earlier scenarios created.
type run struct {
	client  *Client
	seeded  []Item
	created map[string]Item
}

func (s *run) track(it Item)    { s.created[it.ID] = it }
func (s *run) forget(id string) { delete(s.created, id) }

func (s *run) listed(ctx context.Context) (map[string]Item, error) {
	items, err := s.client.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

type scenario struct {
	name string
	fn   func(ctx context.Context, s *run) error
}

// scenarios run in order; later ones rely on the seed and earlier edits.
var scenarios = []scenario{
	{"list items on GET", listSeeded},
	{"add an item on POST", addKale},
	{"edit an item on PUT", editFirst},
	{"delete an item on DELETE", deleteLast},
	{"fail POST without a name", postWithoutName},
	{"fail PUT without a name", putWithoutName},
	{"fail PUT to a malformed id", putMalformedID},
	{"fail PUT without an id", putWithoutID},
	{"fail DELETE of a malformed id", deleteMalformedID},
	{"fail DELETE of an unknown id", deleteUnknownID},
	{"fail DELETE without an id", deleteWithoutID},
}

func listSeeded(ctx context.Context, s *run) error {
	resp, err := s.client.Do(ctx, http.MethodGet, "/items", nil)
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return err
	}
	var items []Item
	if err := resp.JSON(&items); err != nil {
		return err
	}

	// The seed is the tail of the list unless the server already had items.
	if len(items) < len(s.seeded) {
		return fmt.Errorf("listed %d items, seeded %d", len(items), len(s.seeded))
	}
	tail := items[len(items)-len(s.seeded):]
	for i, want := range s.seeded {
		got := tail[i]
		if got.ID == "" {
			return fmt.Errorf("item %d has no _id", i)
		}
		if got != want {
			return fmt.Errorf("item %d = %+v, want %+v", i, got, want)
		}
	}
	return nil
}

func addKale(ctx context.Context, s *run) error {
	before, err := s.listed(ctx)
	if err != nil {
		return err
	}

	resp, err := s.client.DoJSON(ctx, http.MethodPost, "/items", map[string]string{"name": "Kale"})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusCreated); err != nil {
		return err
	}
	var kale Item
	if err := resp.JSON(&kale); err != nil {
		return err
	}
	s.track(kale)

	if kale.Name != "Kale" {
		return fmt.Errorf("created name = %q, want Kale", kale.Name)
	}
	if kale.ID == "" {
		return fmt.Errorf("created item has no _id")
	}
	if _, dup := before[kale.ID]; dup {
		return fmt.Errorf("created id %s already existed", kale.ID)
	}
	return nil
}

func editFirst(ctx context.Context, s *run) error {
	target := s.seeded[0]
	resp, err := s.client.DoJSON(ctx, http.MethodPut, "/items/"+target.ID, map[string]string{"name": "Changed"})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return err
	}
	var got Item
	if err := resp.JSON(&got); err != nil {
		return err
	}
	if got.ID != target.ID || got.Name != "Changed" {
		return fmt.Errorf("updated item = %+v, want {%s Changed}", got, target.ID)
	}

	now, err := s.listed(ctx)
	if err != nil {
		return err
	}
	if now[target.ID].Name != "Changed" {
		return fmt.Errorf("listed name = %q after update", now[target.ID].Name)
	}
	s.seeded[0].Name = "Changed"
	return nil
}

func deleteLast(ctx context.Context, s *run) error {
	target := s.seeded[len(s.seeded)-1]
	resp, err := s.client.Do(ctx, http.MethodDelete, "/items/"+target.ID, nil)
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return err
	}
	s.forget(target.ID)

	now, err := s.listed(ctx)
	if err != nil {
		return err
	}
	if _, still := now[target.ID]; still {
		return fmt.Errorf("deleted item %s is still listed", target.ID)
	}
	return nil
}

func postWithoutName(ctx context.Context, s *run) error {
	resp, err := s.client.DoJSON(ctx, http.MethodPost, "/items", struct{}{})
	if err != nil {
		return err
	}
	if resp.Status == http.StatusCreated {
		var it Item
		if resp.JSON(&it) == nil {
			s.track(it)
		}
	}
	return expect(resp, http.StatusInternalServerError)
}

func putWithoutName(ctx context.Context, s *run) error {
	resp, err := s.client.DoJSON(ctx, http.MethodPut, "/items/"+s.seeded[0].ID, struct{}{})
	if err != nil {
		return err
	}
	return expect(resp, http.StatusInternalServerError)
}

func putMalformedID(ctx context.Context, s *run) error {
	resp, err := s.client.DoJSON(ctx, http.MethodPut, "/items/jkhdsfgghjkdf", map[string]string{"name": "Does Not Exist"})
	if err != nil {
		return err
	}
	return expectNotFound(resp)
}

func putWithoutID(ctx context.Context, s *run) error {
	for _, path := range []string{"/items/", "/items"} {
		resp, err := s.client.DoJSON(ctx, http.MethodPut, path, map[string]string{"name": "Changed"})
		if err != nil {
			return err
		}
		if err := expectNotFound(resp); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func deleteMalformedID(ctx context.Context, s *run) error {
	resp, err := s.client.Do(ctx, http.MethodDelete, "/items/m23doesnotexist345345", nil)
	if err != nil {
		return err
	}
	return expectNotFound(resp)
}

func deleteUnknownID(ctx context.Context, s *run) error {
	resp, err := s.client.Do(ctx, http.MethodDelete, "/items/"+unknownID, nil)
	if err != nil {
		return err
	}
	return expectNotFound(resp)
}

func deleteWithoutID(ctx context.Context, s *run) error {
	for _, path := range []string{"/items/", "/items"} {
		resp, err := s.client.Do(ctx, http.MethodDelete, path, nil)
		if err != nil {
			return err
		}
		if err := expectNotFound(resp); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func expect(resp Response, status int) error {
	if resp.Status != status {
		return fmt.Errorf("status %d, want %d", resp.Status, status)
	}
	if !resp.IsJSON() {
		return fmt.Errorf("content type %q is not JSON", resp.ContentType)
	}
	return nil
}

func expectNotFound(resp Response) error {
	if err := expect(resp, http.StatusNotFound); err != nil {
		return err
	}
	var body ErrorBody
	if err := resp.JSON(&body); err != nil {
		return err
	}
	if body.Message != "Not Found" {
		return fmt.Errorf("message = %q, want Not Found", body.Message)
	}
	return nil
}
