// Package memo is the optional external memoization layer over the pure
// composition core: results keyed by upload content and options, with
// per-dataset indexing so invalidation events can evict them.
package memo

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/mateonav/geolayers/internal/composer"
	"github.com/mateonav/geolayers/internal/geotab"
)

// DatasetDigest hashes a table's full content: name, column names and
// every cell. Two uploads with identical content share a digest, so the
// memo survives re-uploads of an unchanged file.
func DatasetDigest(tbl geotab.Table) string {
	h := xxhash.New()
	_, _ = fmt.Fprintf(h, "%s\x1e", tbl.Name)
	for _, c := range tbl.Columns {
		_, _ = fmt.Fprintf(h, "%s\x1f", c)
	}
	for _, row := range tbl.Rows {
		_, _ = h.Write([]byte{0x1e})
		for _, cell := range row {
			_, _ = fmt.Fprintf(h, "%v\x1f", cell)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Key combines the dataset digests (in request order) with the compose
// options. The readable prefix keeps keys debuggable in redis; the hash
// carries the actual identity.
func Key(digests []string, opts composer.Options) string {
	h := xxhash.New()
	for _, d := range digests {
		_, _ = fmt.Fprintf(h, "%s\x1f", d)
	}
	_, _ = fmt.Fprintf(h, "%s|%t|%g|%d", opts.Mode, opts.ClusteringEnabled, opts.RadiusDeg, opts.CellRes)
	return fmt.Sprintf("compose:%s:%t:%016x", opts.Mode, opts.ClusteringEnabled, h.Sum64())
}

// DatasetIndexKey names the redis set holding the memo keys a dataset
// contributed to.
func DatasetIndexKey(dataset string) string {
	return "memo:ds:" + sanitize(dataset)
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range strings.TrimSpace(s) {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
