package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/restodir/restodir/internal/domain"
	"github.com/restodir/restodir/internal/domain/geo"
	"github.com/restodir/restodir/internal/domain/progress"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
)

// DefaultIDFloor is the id assumed as the current maximum when the store is
// empty or its maximum id cannot be read.
const DefaultIDFloor int64 = 100000000

// Service is the restaurant directory: it owns the store handle, the
// distance-sorted result set, the selected record and the reference point.
//
// Every mutation writes to the store first, then applies the same change to
// the in-memory state. Only BulkImport may run concurrently with readers of
// Progress, and Ping may run concurrently with Connect and Close; all other
// calls must be serialized by the caller.
type Service struct {
	connector Connector

	mu   sync.RWMutex // guards repo
	repo Repository

	ref       geo.Point
	logger    *zap.Logger
	now       func() time.Time

	results  []domrest.Entry
	curIndex int
	current  *domrest.Restaurant

	progress progress.Tracker
}

// New creates a directory service measuring distances from ref.
// connector may be nil when the repository is supplied with WithRepository.
func New(connector Connector, ref geo.Point, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		connector: connector,
		ref:       ref,
		logger:    logger,
		now:       time.Now,
		curIndex:  -1,
	}
}

// WithRepository uses an already opened repository.
func (s *Service) WithRepository(repo Repository) *Service {
	s.mu.Lock()
	s.repo = repo
	s.mu.Unlock()
	return s
}

// WithClock overrides the time source used for grade dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Connect opens the store at endpoint and replaces the current handle.
// The previous handle is closed and the result set and selection are cleared.
func (s *Service) Connect(ctx context.Context, endpoint, database string) error {
	if s.connector == nil {
		return fmt.Errorf("connect: no connector: %w", domain.ErrNotConnected)
	}

	start := time.Now()
	repo, err := s.connector.Connect(ctx, endpoint, database)
	if err != nil {
		return fmt.Errorf("connect to %s/%s: %w", endpoint, database, err)
	}

	s.swapRepo(repo)
	s.results = nil
	s.clearSelection()

	s.logger.Info("Connected",
		zap.String("database", database),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Close releases the store handle and drops the result set and selection,
// which belonged to that store.
func (s *Service) Close() {
	s.swapRepo(nil)
	s.results = nil
	s.clearSelection()
}

// swapRepo installs repo and closes the handle it replaces. A Ping already
// holding the old handle finishes against a closed client and reports an error.
func (s *Service) swapRepo(repo Repository) {
	s.mu.Lock()
	old := s.repo
	s.repo = repo
	s.mu.Unlock()

	if c, ok := old.(interface{ Close() }); ok {
		c.Close()
	}
}

// Ping checks that the connected store answers. Safe to call from any goroutine.
func (s *Service) Ping(ctx context.Context) error {
	repo, err := s.requireRepo()
	if err != nil {
		return err
	}
	if p, ok := repo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx) //nolint:wrapcheck // reported as is by health
	}
	return nil
}

// Connected reports whether a store handle is open. Safe to call from any goroutine.
func (s *Service) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo != nil
}

// requireRepo returns the current handle or domain.ErrNotConnected.
func (s *Service) requireRepo() (Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.repo == nil {
		return nil, domain.ErrNotConnected
	}
	return s.repo, nil
}

// Reference returns the point distances are measured from.
func (s *Service) Reference() geo.Point { return s.ref }

// SetReference changes the reference point. Cached distances keep their
// old values until the next Search.
func (s *Service) SetReference(ref geo.Point) { s.ref = ref }

// Results returns a copy of the current result set.
func (s *Service) Results() []domrest.Entry {
	return slices.Clone(s.results)
}

// Current returns a copy of the selected record.
func (s *Service) Current() (domrest.Restaurant, bool) {
	if s.current == nil {
		return domrest.Restaurant{}, false
	}
	return s.current.Clone(), true
}

// CurrentIndex returns the selected position in the result set.
func (s *Service) CurrentIndex() (int, bool) {
	if s.current == nil {
		return 0, false
	}
	return s.curIndex, true
}

func (s *Service) clearSelection() {
	s.curIndex = -1
	s.current = nil
}

// Search replaces the result set with every record matching cond, sorted by
// distance from the reference point. The selection is left to the caller.
func (s *Service) Search(ctx context.Context, cond domrest.Condition) ([]domrest.Entry, error) {
	repo, err := s.requireRepo()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	projs, err := repo.Search(ctx, cond)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	entries := make([]domrest.Entry, 0, len(projs))
	for _, p := range projs {
		entries = append(entries, domrest.Entry{
			ID:       p.ID,
			Name:     p.Name,
			Distance: p.Coord.DistanceTo(s.ref),
		})
	}
	domrest.SortByDistance(entries)
	s.results = entries

	s.logger.Debug("Search completed",
		zap.Int("results", len(entries)),
		zap.Duration("duration", time.Since(start)),
	)
	return s.Results(), nil
}

// SelectByPosition selects the result-set entry at pos and loads its full
// record fresh from the store. nil or an out-of-range position clears the selection.
func (s *Service) SelectByPosition(ctx context.Context, pos *int) error {
	s.clearSelection()
	if pos == nil || *pos < 0 || *pos >= len(s.results) {
		return nil
	}
	repo, err := s.requireRepo()
	if err != nil {
		return err
	}

	id := s.results[*pos].ID
	rec, err := repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("select %s: %w", id, err)
	}
	s.curIndex = *pos
	s.current = &rec
	return nil
}

// EditBasicInfo sets the patched top-level fields of the selected record.
// The cached list name is not refreshed.
func (s *Service) EditBasicInfo(ctx context.Context, p domrest.InfoPatch) error {
	if s.current == nil || p.IsEmpty() {
		return nil
	}
	repo, err := s.requireRepo()
	if err != nil {
		return err
	}
	if err := repo.SetInfo(ctx, s.current.ID, p); err != nil {
		return fmt.Errorf("edit info: %w", err)
	}
	p.Apply(s.current)
	return nil
}

// EditAddress replaces the textual address of the selected record, keeping
// its coordinate.
func (s *Service) EditAddress(ctx context.Context, p domrest.AddressPatch) error {
	if s.current == nil {
		return nil
	}
	repo, err := s.requireRepo()
	if err != nil {
		return err
	}
	addr := p.Address(s.current.Address.Coord.Clone())
	if err := repo.ReplaceAddress(ctx, s.current.ID, addr); err != nil {
		return fmt.Errorf("edit address: %w", err)
	}
	s.current.Address = addr
	return nil
}

// EditCoordinate sets (both non-nil) or clears (both nil) the selected
// record's coordinate and patches the matching result entry's distance in
// place. The result set is not re-sorted.
func (s *Service) EditCoordinate(ctx context.Context, lon, lat *float64) error {
	if s.current == nil {
		return nil
	}

	var coord domrest.Coord
	switch {
	case lon == nil && lat == nil:
	case lon == nil || lat == nil:
		return fmt.Errorf("edit coordinate: one component missing: %w", domain.ErrInvalidCoordinate)
	case !geo.ValidateCoordinates(*lat, *lon):
		return fmt.Errorf("edit coordinate (%v, %v): %w", *lon, *lat, domain.ErrInvalidCoordinate)
	default:
		coord = domrest.NewCoord(*lon, *lat)
	}

	repo, err := s.requireRepo()
	if err != nil {
		return err
	}
	if err := repo.SetCoord(ctx, s.current.ID, coord); err != nil {
		return fmt.Errorf("edit coordinate: %w", err)
	}
	s.current.Address.Coord = coord

	for i := range s.results {
		if s.results[i].ID == s.current.ID {
			s.results[i].Distance = coord.DistanceTo(s.ref)
			break
		}
	}
	return nil
}

// AddGrade appends a grade dated now to the selected record.
func (s *Service) AddGrade(ctx context.Context, grade string, score float64) error {
	if s.current == nil {
		return nil
	}
	repo, err := s.requireRepo()
	if err != nil {
		return err
	}
	g := domrest.Grade{Grade: grade, Score: score, Date: s.now().UnixMilli()}
	if err := repo.PushGrade(ctx, s.current.ID, g); err != nil {
		return fmt.Errorf("add grade: %w", err)
	}
	s.current.Grades = append(s.current.Grades, g)
	return nil
}

// RemoveGrade removes the grade at pos from the selected record.
func (s *Service) RemoveGrade(ctx context.Context, pos int) error {
	if s.current == nil {
		return nil
	}
	if pos < 0 || pos >= len(s.current.Grades) {
		return fmt.Errorf("remove grade %d of %d: %w", pos, len(s.current.Grades), domain.ErrGradeIndexOutOfRange)
	}
	repo, err := s.requireRepo()
	if err != nil {
		return err
	}
	if err := repo.RemoveGrade(ctx, s.current.ID, pos); err != nil {
		return fmt.Errorf("remove grade: %w", err)
	}
	s.current.Grades = slices.Delete(s.current.Grades, pos, pos+1)
	return nil
}

// CreateRecord inserts a default record named "untitled" with id one above
// the store's maximum and prepends it to the result set with the unknown
// distance. A selection keeps pointing at the same record.
func (s *Service) CreateRecord(ctx context.Context) (domrest.Restaurant, error) {
	repo, err := s.requireRepo()
	if err != nil {
		return domrest.Restaurant{}, err
	}

	maxID, err := repo.MaxID(ctx)
	if err != nil {
		s.logger.Debug("Max id unavailable, using floor",
			zap.Int64("floor", DefaultIDFloor),
			zap.Error(err),
		)
		maxID = DefaultIDFloor
	}

	rec := domrest.New()
	rec.Name = domrest.UntitledName
	rec.ID = strconv.FormatInt(maxID+1, 10)

	if err := repo.Insert(ctx, &rec); err != nil {
		return domrest.Restaurant{}, fmt.Errorf("create record: %w", err)
	}

	s.results = slices.Insert(s.results, 0, domrest.Entry{
		ID:       rec.ID,
		Name:     rec.Name,
		Distance: geo.UnknownDistance,
	})
	if s.current != nil {
		s.curIndex++
	}
	return rec.Clone(), nil
}

// DeleteCurrent deletes the selected record, drops it from the result set and
// clears the selection. A record already gone from the store counts as deleted.
func (s *Service) DeleteCurrent(ctx context.Context) error {
	if s.current == nil {
		return nil
	}
	repo, err := s.requireRepo()
	if err != nil {
		return err
	}
	id := s.current.ID
	if err := repo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.results = slices.DeleteFunc(s.results, func(e domrest.Entry) bool { return e.ID == id })
	s.clearSelection()
	return nil
}

// DeleteAll deletes every record in the result set, empties it and clears
// the selection. Records outside the result set are untouched.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	if len(s.results) == 0 {
		s.clearSelection()
		return 0, nil
	}
	repo, err := s.requireRepo()
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(s.results))
	for _, e := range s.results {
		ids = append(ids, e.ID)
	}
	n, err := repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}
	s.results = nil
	s.clearSelection()
	return n, nil
}
