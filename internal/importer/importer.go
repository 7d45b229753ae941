// Package importer reads line-delimited extended JSON exports, one record per line.
package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/restodir/restodir/internal/domain"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
)

// MaxLineSize bounds a single record line.
const MaxLineSize = 16 << 20

var utf8BOM = []byte("\xEF\xBB\xBF")

// ReadFile reads every record in the file at path.
func ReadFile(path string) ([]domrest.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	recs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, nil
}

// Read decodes one record per non-blank line. Both relaxed and canonical
// extended JSON are accepted, so $date, $numberLong and $oid wrappers decode
// to their BSON types. A line that is not a JSON object fails with a
// domain.LineError carrying its 1-based line number. A UTF-8 byte order mark
// before the first line is ignored.
func Read(r io.Reader) ([]domrest.RawRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var recs []domrest.RawRecord
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if line == 1 {
			b = bytes.TrimPrefix(b, utf8BOM)
		}
		b = bytes.TrimSpace(b)
		if len(b) == 0 {
			continue
		}
		if b[0] != '{' {
			return nil, domain.NewLineError(line, fmt.Errorf("not an object: %w", domain.ErrInvalidRecord))
		}

		var m bson.M
		if err := bson.UnmarshalExtJSON(b, false, &m); err != nil {
			return nil, domain.NewLineError(line, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err))
		}
		recs = append(recs, domrest.RawRecord(m))
	}
	if err := sc.Err(); err != nil {
		return nil, domain.NewLineError(line+1, err)
	}
	return recs, nil
}
