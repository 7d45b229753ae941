package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/restodir/restodir/internal/domain"
	"github.com/restodir/restodir/internal/domain/geo"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
	"github.com/restodir/restodir/internal/importer"
	"github.com/restodir/restodir/internal/usecase/directory"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session over the directory",
	Long: `Shell connects to the configured database and reads commands from stdin.
Type "help" for the command list.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := state.connect(ctx); err != nil {
			return err
		}
		stop := state.startStatusServer()
		defer stop()

		sh := newShell(state.dir, cmd.InOrStdin(), cmd.OutOrStdout())
		sh.prompt = stdinIsTerminal()
		sh.uri, sh.db = state.cfg.Database.URI, state.cfg.Database.Name
		return sh.run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// controller is the part of the directory the shell drives.
type controller interface {
	Connect(ctx context.Context, endpoint, database string) error
	Search(ctx context.Context, cond domrest.Condition) ([]domrest.Entry, error)
	Results() []domrest.Entry
	SelectByPosition(ctx context.Context, pos *int) error
	Current() (domrest.Restaurant, bool)
	CurrentIndex() (int, bool)
	EditBasicInfo(ctx context.Context, p domrest.InfoPatch) error
	EditAddress(ctx context.Context, p domrest.AddressPatch) error
	EditCoordinate(ctx context.Context, lon, lat *float64) error
	AddGrade(ctx context.Context, grade string, score float64) error
	RemoveGrade(ctx context.Context, pos int) error
	CreateRecord(ctx context.Context) (domrest.Restaurant, error)
	DeleteCurrent(ctx context.Context) error
	DeleteAll(ctx context.Context) (int64, error)
	BulkImport(ctx context.Context, records []domrest.RawRecord) (directory.ImportReport, error)
	Reference() geo.Point
	SetReference(ref geo.Point)
}

var errQuit = errors.New("quit")

type shell struct {
	dir     controller
	in      io.Reader
	out     io.Writer
	prompt  bool
	uri, db string
	cmds    map[string]shellCommand
}

type shellCommand struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

func newShell(dir controller, in io.Reader, out io.Writer) *shell {
	s := &shell{dir: dir, in: in, out: out}
	s.cmds = map[string]shellCommand{
		"connect": {"connect [uri] [db]", s.cmdConnect},
		"search":  {"search [name=..] [borough=..] [street=..] [zipcode=..]", s.cmdSearch},
		"list":    {"list", s.cmdList},
		"select":  {"select [n]  (no n clears the selection)", s.cmdSelect},
		"show":    {"show", s.cmdShow},
		"info":    {"info [name=..] [cuisine=..] [borough=..]", s.cmdInfo},
		"address": {"address building=.. street=.. zipcode=..", s.cmdAddress},
		"coord":   {"coord <lon> <lat> | coord clear  (e.g. coord 73.98W 40.75N)", s.cmdCoord},
		"grade":   {"grade add <grade> <score> | grade rm <n>", s.cmdGrade},
		"new":     {"new", s.cmdNew},
		"delete":  {"delete", s.cmdDelete},
		"purge":   {"purge  (deletes every listed record)", s.cmdPurge},
		"import":  {"import <file>", s.cmdImport},
		"ref":     {"ref [<lon>,<lat>]", s.cmdRef},
		"help":    {"help", s.cmdHelp},
		"quit":    {"quit", func(context.Context, []string) error { return errQuit }},
	}
	return s
}

// run executes commands until EOF or quit. Command errors are printed and
// the session continues.
func (s *shell) run(ctx context.Context) error {
	sc := bufio.NewScanner(s.in)
	for {
		if s.prompt {
			fmt.Fprint(s.out, s.promptText())
		}
		if !sc.Scan() {
			return sc.Err() //nolint:wrapcheck // scanner error reported as is
		}
		if err := s.exec(ctx, sc.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(s.out, "error:", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *shell) promptText() string {
	if i, ok := s.dir.CurrentIndex(); ok {
		return fmt.Sprintf("restodir[%d]> ", i)
	}
	return "restodir> "
}

func (s *shell) exec(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	c, ok := s.cmds[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", args[0])
	}
	return c.run(ctx, args[1:])
}

func (s *shell) cmdConnect(ctx context.Context, args []string) error {
	uri, db := s.uri, s.db
	if len(args) > 0 {
		uri = args[0]
	}
	if len(args) > 1 {
		db = args[1]
	}
	if err := s.dir.Connect(ctx, uri, db); err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	s.uri, s.db = uri, db
	fmt.Fprintf(s.out, "connected to %s\n", db)
	return nil
}

func (s *shell) cmdSearch(ctx context.Context, args []string) error {
	kv, err := parseKV(args, "name", "borough", "street", "zipcode")
	if err != nil {
		return err
	}
	cond := domrest.Condition{
		Name:    deref(kv["name"]),
		Borough: deref(kv["borough"]),
		Street:  deref(kv["street"]),
		Zipcode: deref(kv["zipcode"]),
	}
	entries, err := s.dir.Search(ctx, cond)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	// a new result set invalidates the position of any selection
	if err := s.dir.SelectByPosition(ctx, nil); err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	printEntries(s.out, entries, 0)
	return nil
}

func (s *shell) cmdList(context.Context, []string) error {
	printEntries(s.out, s.dir.Results(), 0)
	return nil
}

func (s *shell) cmdSelect(ctx context.Context, args []string) error {
	var pos *int
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("select: position must be a number, got %q", args[0])
		}
		pos = &n
	}
	if err := s.dir.SelectByPosition(ctx, pos); err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	if _, ok := s.dir.Current(); !ok {
		fmt.Fprintln(s.out, "no selection")
		return nil
	}
	return s.cmdShow(ctx, nil)
}

func (s *shell) requireSelection() (domrest.Restaurant, error) {
	cur, ok := s.dir.Current()
	if !ok {
		return cur, errors.New("no record selected, use select <n>")
	}
	return cur, nil
}

func (s *shell) cmdShow(context.Context, []string) error {
	cur, err := s.requireSelection()
	if err != nil {
		return err
	}
	printRestaurant(s.out, cur)
	return nil
}

func (s *shell) cmdInfo(ctx context.Context, args []string) error {
	if _, err := s.requireSelection(); err != nil {
		return err
	}
	kv, err := parseKV(args, "name", "cuisine", "borough")
	if err != nil {
		return err
	}
	p := domrest.InfoPatch{Name: kv["name"], Cuisine: kv["cuisine"], Borough: kv["borough"]}
	return s.dir.EditBasicInfo(ctx, p) //nolint:wrapcheck // already wrapped
}

func (s *shell) cmdAddress(ctx context.Context, args []string) error {
	cur, err := s.requireSelection()
	if err != nil {
		return err
	}
	kv, err := parseKV(args, "building", "street", "zipcode")
	if err != nil {
		return err
	}
	// omitted fields keep their current value; the address is replaced as a whole
	p := domrest.AddressPatch{
		Building: orDefault(kv["building"], cur.Address.Building),
		Street:   orDefault(kv["street"], cur.Address.Street),
		Zipcode:  orDefault(kv["zipcode"], cur.Address.Zipcode),
	}
	return s.dir.EditAddress(ctx, p) //nolint:wrapcheck // already wrapped
}

func (s *shell) cmdCoord(ctx context.Context, args []string) error {
	if _, err := s.requireSelection(); err != nil {
		return err
	}
	switch {
	case len(args) == 1 && args[0] == "clear":
		return s.dir.EditCoordinate(ctx, nil, nil) //nolint:wrapcheck // already wrapped
	case len(args) != 2:
		return errors.New("usage: " + s.cmds["coord"].usage)
	}
	lon, err := geo.ParseLongitude(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidCoordinate, err)
	}
	lat, err := geo.ParseLatitude(args[1])
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidCoordinate, err)
	}
	return s.dir.EditCoordinate(ctx, lon, lat) //nolint:wrapcheck // already wrapped
}

func (s *shell) cmdGrade(ctx context.Context, args []string) error {
	if _, err := s.requireSelection(); err != nil {
		return err
	}
	switch {
	case len(args) == 3 && args[0] == "add":
		score, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("grade add: score must be a number, got %q", args[2])
		}
		return s.dir.AddGrade(ctx, args[1], score) //nolint:wrapcheck // already wrapped
	case len(args) == 2 && args[0] == "rm":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("grade rm: position must be a number, got %q", args[1])
		}
		return s.dir.RemoveGrade(ctx, n) //nolint:wrapcheck // already wrapped
	default:
		return errors.New("usage: " + s.cmds["grade"].usage)
	}
}

func (s *shell) cmdNew(ctx context.Context, _ []string) error {
	rec, err := s.dir.CreateRecord(ctx)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	fmt.Fprintf(s.out, "created %s at position 0\n", rec.ID)
	return nil
}

func (s *shell) cmdDelete(ctx context.Context, _ []string) error {
	cur, err := s.requireSelection()
	if err != nil {
		return err
	}
	if err := s.dir.DeleteCurrent(ctx); err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	fmt.Fprintf(s.out, "deleted %s\n", cur.ID)
	return nil
}

func (s *shell) cmdPurge(ctx context.Context, _ []string) error {
	n, err := s.dir.DeleteAll(ctx)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	fmt.Fprintf(s.out, "deleted %d record(s)\n", n)
	return nil
}

func (s *shell) cmdImport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: " + s.cmds["import"].usage)
	}
	records, err := importer.ReadFile(args[0])
	if err != nil {
		return err //nolint:wrapcheck // carries file and line
	}
	start := time.Now()
	report, err := s.dir.BulkImport(ctx, records)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	fmt.Fprintf(s.out, "imported %d of %d records (%d duplicates, %d invalid) in %s\n",
		report.Inserted, report.Total, report.Duplicates, report.Invalid, time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *shell) cmdRef(_ context.Context, args []string) error {
	if len(args) > 0 {
		p, err := geo.ParsePoint(strings.Join(args, ""))
		if err != nil {
			return err //nolint:wrapcheck // message is self-describing
		}
		s.dir.SetReference(p)
	}
	ref := s.dir.Reference()
	fmt.Fprintf(s.out, "reference %s %s\n", geo.FormatLongitude(&ref.Lon), geo.FormatLatitude(&ref.Lat))
	return nil
}

func (s *shell) cmdHelp(context.Context, []string) error {
	for _, name := range []string{
		"connect", "search", "list", "select", "show", "info", "address", "coord",
		"grade", "new", "delete", "purge", "import", "ref", "help", "quit",
	} {
		fmt.Fprintln(s.out, "  "+s.cmds[name].usage)
	}
	return nil
}

func printRestaurant(w io.Writer, r domrest.Restaurant) {
	fmt.Fprintf(w, "id:       %s\n", r.ID)
	fmt.Fprintf(w, "name:     %s\n", r.Name)
	fmt.Fprintf(w, "cuisine:  %s\n", r.Cuisine)
	fmt.Fprintf(w, "borough:  %s\n", r.Borough)
	fmt.Fprintf(w, "address:  %s %s %s\n", r.Address.Building, r.Address.Street, r.Address.Zipcode)
	if r.Address.Coord.Known() {
		fmt.Fprintf(w, "coord:    %s %s\n",
			geo.FormatLongitude(r.Address.Coord.Lon), geo.FormatLatitude(r.Address.Coord.Lat))
	} else {
		fmt.Fprintln(w, "coord:    -")
	}
	fmt.Fprintf(w, "grades:   %d\n", len(r.Grades))
	for i, g := range r.Grades {
		fmt.Fprintf(w, "  %d  %-3s %6.1f  %s\n", i, g.Grade, g.Score,
			time.UnixMilli(g.Date).UTC().Format(time.DateOnly))
	}
}

// splitArgs splits a command line on spaces. Double quotes group words.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}

// parseKV parses key=value arguments restricted to allowed keys. A key given
// with an empty value is present with "".
func parseKV(args []string, allowed ...string) (map[string]*string, error) {
	out := make(map[string]*string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		if !slices.Contains(allowed, k) {
			return nil, fmt.Errorf("unknown field %q (allowed: %s)", k, strings.Join(allowed, ", "))
		}
		out[k] = &v
	}
	return out, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func orDefault(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
