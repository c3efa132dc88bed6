package parser

import (
	"bytes"

	"github.com/rickgao/l2-recorder/internal/model"
)

// framePrefix gates which frames are parsed at all; everything else on
// the wire (heartbeats, subscription acks, snapshots) is dropped.
const framePrefix = `{"channel":"l2_data"`

// updatesKey marks the start of the per-level delta array.
const updatesKey = `"updates":[`

// Key lengths of the four fields of one update element, in their stable
// wire order. After the opening quote of a key, the first value byte sits
// keyLen + 3 bytes ahead (closing quote, colon, opening quote).
const (
	sideKeyLen  = 4
	timeKeyLen  = 10
	priceKeyLen = 11
	qtyKeyLen   = 12
)

// Parser walks one text frame at a time and emits an L2Row per update
// element. It is not safe for concurrent use: the feed goroutine owns it,
// which lets the timestamp day-conversion cache live without locks.
type Parser struct {
	lastYMD  int
	lastDays int64
}

// New returns a Parser with an empty date cache.
func New() *Parser {
	return &Parser{lastYMD: -1}
}

// Frame parses one complete text frame and calls emit for each update
// element, in array order. It returns the number of rows emitted.
//
// A structurally malformed element stops the frame: rows already emitted
// are kept, nothing partial is emitted for the failed element. Numeric
// fields are not validated; the feed's schema guarantees are trusted.
func (p *Parser) Frame(buf []byte, emit func(model.L2Row)) int {
	if len(buf) < len(framePrefix) || string(buf[:len(framePrefix)]) != framePrefix {
		return 0
	}
	// Frames ending in "[]}" carry an empty updates array.
	if n := len(buf); n >= 3 && buf[n-3] == '[' && buf[n-2] == ']' {
		return 0
	}

	start := bytes.Index(buf, []byte(updatesKey))
	if start < 0 {
		return 0
	}

	end := len(buf)
	i := start + len(updatesKey)
	count := 0

	for i < end && buf[i] != ']' {
		objStart := findByte(buf, i, end, '{')
		if objStart < 0 {
			break
		}
		objEnd := findByte(buf, objStart+1, end, '}')
		if objEnd < 0 {
			return count
		}

		j := objStart + 1

		// side: only the first value byte is inspected
		k := findByte(buf, j, objEnd, '"')
		if k < 0 {
			return count
		}
		v := k + 1 + sideKeyLen + 2 + 1
		if v >= objEnd {
			return count
		}
		side := model.SideAsk
		if buf[v] == 'b' {
			side = model.SideBid
		}
		vEnd := findByte(buf, v, objEnd, '"')
		if vEnd < 0 {
			return count
		}
		j = vEnd + 1

		// event_time
		k = findByte(buf, j, objEnd, '"')
		if k < 0 {
			return count
		}
		v = k + 1 + timeKeyLen + 2 + 1
		tsEnd := findByte(buf, v, objEnd, '"')
		if v >= objEnd || tsEnd < 0 || tsEnd-v < 19 {
			return count
		}
		tsNs := p.parseRFC3339NS(buf[v:tsEnd])
		j = tsEnd + 1

		// price_level
		k = findByte(buf, j, objEnd, '"')
		if k < 0 {
			return count
		}
		v = k + 1 + priceKeyLen + 2 + 1
		if v >= objEnd {
			return count
		}
		price := parsePrice(buf[v:objEnd])
		vEnd = findByte(buf, v, objEnd, '"')
		if vEnd < 0 {
			return count
		}
		j = vEnd + 1

		// new_quantity
		k = findByte(buf, j, objEnd, '"')
		if k < 0 {
			return count
		}
		v = k + 1 + qtyKeyLen + 2 + 1
		if v+1 >= objEnd {
			return count
		}
		var qty float32
		if buf[v] == '0' && buf[v+1] != '.' {
			// removal fast path: no numeric parse for "0"
			qty = 0
		} else {
			qty = parseQty(buf[v:objEnd])
		}
		if vEnd = findByte(buf, v, objEnd, '"'); vEnd < 0 {
			return count
		}

		emit(model.L2Row{TsNs: tsNs, Price: price, Qty: qty, Side: side})
		count++
		i = objEnd + 1
	}

	return count
}
