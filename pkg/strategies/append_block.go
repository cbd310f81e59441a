package strategies

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/portcfg/pkg/types"
)

// BlockMarkers returns the begin and end marker lines of the block an
// action manages.
func BlockMarkers(namespace, actionID string) (begin, end string) {
	marker := strings.ToUpper(namespace)
	begin = fmt.Sprintf("# BEGIN %s MANAGED BLOCK:%s", marker, actionID)
	end = fmt.Sprintf("# END %s MANAGED BLOCK:%s", marker, actionID)
	return begin, end
}

// AppendBlock keeps the source text inside a marked block of the
// destination. An existing block is replaced in place; otherwise the block
// is appended after a blank line. A begin marker without its end marker
// (or the reverse) is a conflict.
func AppendBlock(ctx *Context, src, dst string) (Outcome, error) {
	var out Outcome

	srcData, err := readSource(ctx.FS, src)
	if err != nil {
		return out, err
	}
	begin, end := BlockMarkers(ctx.Namespace, ctx.ActionID)
	body := strings.TrimRight(string(srcData), "\n")
	block := begin + "\n" + body + "\n" + end + "\n"

	oldData, exists, err := readDestination(ctx, dst)
	if err != nil {
		return out, err
	}
	if !exists {
		return out, ctx.create(&out, dst, []byte(block), 0644)
	}

	old := string(oldData)
	updated, ok := placeBlock(old, block, begin, end)
	if !ok {
		conflict, err := ctx.conflict(dst, types.ReasonBlockMarkersUnbalanced, []byte(block))
		out.Conflict = conflict
		return out, err
	}
	if updated == old {
		return out, nil
	}
	return out, ctx.update(&out, dst, []byte(updated))
}

// placeBlock returns old with block in place. ok is false when the
// markers are unbalanced.
func placeBlock(old, block, begin, end string) (string, bool) {
	start := findLine(old, begin, 0)
	if start < 0 {
		if findLine(old, end, 0) >= 0 {
			return "", false
		}
		trimmed := strings.TrimRight(old, "\n")
		if trimmed == "" {
			return block, true
		}
		return trimmed + "\n\n" + block, true
	}

	stop := findLine(old, end, start+len(begin))
	if stop < 0 {
		return "", false
	}
	stop += len(end)
	switch {
	case strings.HasPrefix(old[stop:], "\r\n"):
		stop += 2
	case strings.HasPrefix(old[stop:], "\n"):
		stop++
	}
	return old[:start] + block + old[stop:], true
}

// findLine returns the offset of the first occurrence of line at or after
// from that spans a whole line, or -1.
func findLine(s, line string, from int) int {
	for from <= len(s) {
		i := strings.Index(s[from:], line)
		if i < 0 {
			return -1
		}
		at := from + i
		after := at + len(line)
		startsLine := at == 0 || s[at-1] == '\n'
		endsLine := after == len(s) || s[after] == '\n' || (s[after] == '\r' && (after+1 == len(s) || s[after+1] == '\n'))
		if startsLine && endsLine {
			return at
		}
		from = at + 1
	}
	return -1
}
