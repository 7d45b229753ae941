package main

import (
	"context"

	"github.com/restodir/restodir/internal/domain/geo"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
	"github.com/restodir/restodir/internal/usecase/directory"
)

// mockController records calls; nil function fields are no-ops.
type mockController struct {
	connectFn     func(ctx context.Context, endpoint, database string) error
	searchFn      func(ctx context.Context, cond domrest.Condition) ([]domrest.Entry, error)
	selectFn      func(ctx context.Context, pos *int) error
	editInfoFn    func(ctx context.Context, p domrest.InfoPatch) error
	editAddressFn func(ctx context.Context, p domrest.AddressPatch) error
	editCoordFn   func(ctx context.Context, lon, lat *float64) error
	addGradeFn    func(ctx context.Context, grade string, score float64) error
	removeGradeFn func(ctx context.Context, pos int) error
	createFn      func(ctx context.Context) (domrest.Restaurant, error)
	deleteFn      func(ctx context.Context) error
	deleteAllFn   func(ctx context.Context) (int64, error)
	importFn      func(ctx context.Context, records []domrest.RawRecord) (directory.ImportReport, error)

	results []domrest.Entry
	current *domrest.Restaurant
	index   int
	ref     geo.Point
}

func (m *mockController) Connect(ctx context.Context, endpoint, database string) error {
	if m.connectFn != nil {
		return m.connectFn(ctx, endpoint, database)
	}
	return nil
}

func (m *mockController) Search(ctx context.Context, cond domrest.Condition) ([]domrest.Entry, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, cond)
	}
	return m.results, nil
}

func (m *mockController) Results() []domrest.Entry { return m.results }

func (m *mockController) SelectByPosition(ctx context.Context, pos *int) error {
	if m.selectFn != nil {
		return m.selectFn(ctx, pos)
	}
	if pos == nil {
		m.current = nil
	}
	return nil
}

func (m *mockController) Current() (domrest.Restaurant, bool) {
	if m.current == nil {
		return domrest.Restaurant{}, false
	}
	return m.current.Clone(), true
}

func (m *mockController) CurrentIndex() (int, bool) { return m.index, m.current != nil }

func (m *mockController) EditBasicInfo(ctx context.Context, p domrest.InfoPatch) error {
	if m.editInfoFn != nil {
		return m.editInfoFn(ctx, p)
	}
	return nil
}

func (m *mockController) EditAddress(ctx context.Context, p domrest.AddressPatch) error {
	if m.editAddressFn != nil {
		return m.editAddressFn(ctx, p)
	}
	return nil
}

func (m *mockController) EditCoordinate(ctx context.Context, lon, lat *float64) error {
	if m.editCoordFn != nil {
		return m.editCoordFn(ctx, lon, lat)
	}
	return nil
}

func (m *mockController) AddGrade(ctx context.Context, grade string, score float64) error {
	if m.addGradeFn != nil {
		return m.addGradeFn(ctx, grade, score)
	}
	return nil
}

func (m *mockController) RemoveGrade(ctx context.Context, pos int) error {
	if m.removeGradeFn != nil {
		return m.removeGradeFn(ctx, pos)
	}
	return nil
}

func (m *mockController) CreateRecord(ctx context.Context) (domrest.Restaurant, error) {
	if m.createFn != nil {
		return m.createFn(ctx)
	}
	return domrest.New(), nil
}

func (m *mockController) DeleteCurrent(ctx context.Context) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx)
	}
	return nil
}

func (m *mockController) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return 0, nil
}

func (m *mockController) BulkImport(ctx context.Context, records []domrest.RawRecord) (directory.ImportReport, error) {
	if m.importFn != nil {
		return m.importFn(ctx, records)
	}
	return directory.ImportReport{Total: len(records), Inserted: len(records)}, nil
}

func (m *mockController) Reference() geo.Point { return m.ref }

func (m *mockController) SetReference(ref geo.Point) { m.ref = ref }
