package directory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/restodir/restodir/internal/domain"
	"github.com/restodir/restodir/internal/domain/geo"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
)

// fakeRepo is an in-memory Repository with store-like semantics: unique ids,
// insertion order, case-insensitive contains matching. Errors can be injected
// per operation.
type fakeRepo struct {
	recs  []domrest.Restaurant
	calls map[string]int

	maxIDErr      error
	getErr        error
	searchErr     error
	updateErr     error
	deleteErr     error
	insertManyErr error
	closed        atomic.Bool
	pings         atomic.Int64
}

func newFakeRepo(recs ...domrest.Restaurant) *fakeRepo {
	return &fakeRepo{recs: recs, calls: map[string]int{}}
}

func (f *fakeRepo) find(id string) *domrest.Restaurant {
	for i := range f.recs {
		if f.recs[i].ID == id {
			return &f.recs[i]
		}
	}
	return nil
}

func (f *fakeRepo) mustGet(t *testing.T, id string) domrest.Restaurant {
	t.Helper()
	r := f.find(id)
	if r == nil {
		t.Fatalf("record %s not in store", id)
	}
	return r.Clone()
}

func contains(field, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(field), strings.ToLower(sub))
}

func (f *fakeRepo) Search(_ context.Context, cond domrest.Condition) ([]domrest.Projection, error) {
	f.calls["search"]++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	cond = cond.Normalize()
	var out []domrest.Projection
	for _, r := range f.recs {
		if contains(r.Name, cond.Name) && contains(r.Borough, cond.Borough) &&
			contains(r.Address.Street, cond.Street) && contains(r.Address.Zipcode, cond.Zipcode) {
			out = append(out, domrest.Projection{ID: r.ID, Name: r.Name, Coord: r.Address.Coord.Clone()})
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (domrest.Restaurant, error) {
	f.calls["get"]++
	if f.getErr != nil {
		return domrest.Restaurant{}, f.getErr
	}
	r := f.find(id)
	if r == nil {
		return domrest.Restaurant{}, domain.ErrRecordNotFound
	}
	return r.Clone(), nil
}

func (f *fakeRepo) MaxID(context.Context) (int64, error) {
	f.calls["maxID"]++
	if f.maxIDErr != nil {
		return 0, f.maxIDErr
	}
	var maxID int64 = -1
	for _, r := range f.recs {
		var n int64
		for _, c := range r.ID {
			if c < '0' || c > '9' {
				n = -1
				break
			}
			n = n*10 + int64(c-'0')
		}
		if n > maxID {
			maxID = n
		}
	}
	if maxID < 0 {
		return 0, domain.ErrRecordNotFound
	}
	return maxID, nil
}

func (f *fakeRepo) Insert(_ context.Context, rec *domrest.Restaurant) error {
	f.calls["insert"]++
	if f.find(rec.ID) != nil {
		return domain.ErrDuplicateRecord
	}
	f.recs = append(f.recs, rec.Clone())
	return nil
}

func (f *fakeRepo) InsertMany(_ context.Context, recs []domrest.RawRecord) (domrest.InsertResult, error) {
	f.calls["insertMany"]++
	if f.insertManyErr != nil {
		return domrest.InsertResult{}, f.insertManyErr
	}
	var res domrest.InsertResult
	for _, raw := range recs {
		id, _ := raw["restaurant_id"].(string)
		if f.find(id) != nil {
			res.Duplicates++
			continue
		}
		r := domrest.New()
		r.ID = id
		r.Name, _ = raw["name"].(string)
		if grades, ok := raw["grades"].([]any); ok {
			for _, g := range grades {
				gm, _ := g.(map[string]any)
				d, _ := gm["date"].(int64)
				gr, _ := gm["grade"].(string)
				r.Grades = append(r.Grades, domrest.Grade{Grade: gr, Date: d})
			}
		}
		f.recs = append(f.recs, r)
		res.Inserted++
	}
	if res.Duplicates > 0 {
		return res, domain.ErrDuplicateRecord
	}
	return res, nil
}

func (f *fakeRepo) mutate(id string, fn func(r *domrest.Restaurant)) error {
	f.calls["update"]++
	if f.updateErr != nil {
		return f.updateErr
	}
	r := f.find(id)
	if r == nil {
		return domain.ErrRecordNotFound
	}
	fn(r)
	return nil
}

func (f *fakeRepo) SetInfo(_ context.Context, id string, p domrest.InfoPatch) error {
	return f.mutate(id, func(r *domrest.Restaurant) { p.Apply(r) })
}

func (f *fakeRepo) ReplaceAddress(_ context.Context, id string, a domrest.Address) error {
	return f.mutate(id, func(r *domrest.Restaurant) {
		a.Coord = a.Coord.Clone()
		r.Address = a
	})
}

func (f *fakeRepo) SetCoord(_ context.Context, id string, c domrest.Coord) error {
	return f.mutate(id, func(r *domrest.Restaurant) { r.Address.Coord = c.Clone() })
}

func (f *fakeRepo) PushGrade(_ context.Context, id string, g domrest.Grade) error {
	return f.mutate(id, func(r *domrest.Restaurant) { r.Grades = append(r.Grades, g) })
}

func (f *fakeRepo) RemoveGrade(_ context.Context, id string, pos int) error {
	return f.mutate(id, func(r *domrest.Restaurant) {
		if pos >= 0 && pos < len(r.Grades) {
			r.Grades = slices.Delete(r.Grades, pos, pos+1)
		}
	})
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.calls["delete"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	before := len(f.recs)
	f.recs = slices.DeleteFunc(f.recs, func(r domrest.Restaurant) bool { return r.ID == id })
	if len(f.recs) == before {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (f *fakeRepo) DeleteMany(_ context.Context, ids []string) (int64, error) {
	f.calls["deleteMany"]++
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	before := len(f.recs)
	f.recs = slices.DeleteFunc(f.recs, func(r domrest.Restaurant) bool { return slices.Contains(ids, r.ID) })
	return int64(before - len(f.recs)), nil
}

func (f *fakeRepo) Close() { f.closed.Store(true) }

func (f *fakeRepo) Ping(context.Context) error {
	f.pings.Add(1)
	if f.closed.Load() {
		return errors.New("client is disconnected")
	}
	return nil
}

// --- fixtures ---

var testRef = geo.Point{Lon: -73.9, Lat: 40.9}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func rec(id, name string, coord domrest.Coord, grades ...domrest.Grade) domrest.Restaurant {
	r := domrest.New()
	r.ID = id
	r.Name = name
	r.Address.Coord = coord
	r.Grades = append(r.Grades, grades...)
	return r
}

func newTestService(t *testing.T, recs ...domrest.Restaurant) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo(recs...)
	svc := New(nil, testRef, nil).
		WithRepository(repo).
		WithClock(func() time.Time { return fixedNow })
	return svc, repo
}

func intPtr(i int) *int { return &i }

func f64(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

// selectID searches everything and selects the entry with id.
func selectID(t *testing.T, svc *Service, id string) int {
	t.Helper()
	ctx := context.Background()
	entries, err := svc.Search(ctx, domrest.Condition{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for i, e := range entries {
		if e.ID == id {
			if err := svc.SelectByPosition(ctx, intPtr(i)); err != nil {
				t.Fatalf("select: %v", err)
			}
			return i
		}
	}
	t.Fatalf("id %s not in results", id)
	return -1
}

// assertMirror fails unless the selected record equals the stored one.
func assertMirror(t *testing.T, svc *Service, repo *fakeRepo) {
	t.Helper()
	cur, ok := svc.Current()
	if !ok {
		t.Fatal("no selection")
	}
	stored := repo.mustGet(t, cur.ID)
	if !equalRestaurant(cur, stored) {
		t.Errorf("mirror diverged from store:\nmirror %+v\nstore  %+v", cur, stored)
	}
}

func equalCoord(a, b domrest.Coord) bool {
	pa, oka := a.Point()
	pb, okb := b.Point()
	return oka == okb && pa == pb
}

func equalRestaurant(a, b domrest.Restaurant) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Cuisine == b.Cuisine && a.Borough == b.Borough &&
		a.Address.Building == b.Address.Building && a.Address.Street == b.Address.Street &&
		a.Address.Zipcode == b.Address.Zipcode && equalCoord(a.Address.Coord, b.Address.Coord) &&
		slices.Equal(a.Grades, b.Grades)
}
