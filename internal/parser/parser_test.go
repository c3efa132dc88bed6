package parser

import (
	"fmt"
	"testing"
	"time"

	"github.com/rickgao/l2-recorder/internal/model"
)

func collect(t *testing.T, frame string) []model.L2Row {
	t.Helper()
	var rows []model.L2Row
	n := New().Frame([]byte(frame), func(r model.L2Row) {
		rows = append(rows, r)
	})
	if n != len(rows) {
		t.Fatalf("Frame returned %d, emitted %d rows", n, len(rows))
	}
	return rows
}

func TestFrame_SingleUpdate(t *testing.T) {
	frame := `{"channel":"l2_data","client_id":"","timestamp":"2024-06-01T12:00:00.000001Z","sequence_num":1,` +
		`"events":[{"type":"update","product_id":"BTC-USD","updates":[` +
		`{"side":"bid","event_time":"2024-06-01T12:00:00.000000000Z","price_level":"100.50","new_quantity":"0.25"}]}]}`

	rows := collect(t, frame)
	if len(rows) != 1 {
		t.Fatalf("emitted %d rows, want 1", len(rows))
	}

	want := model.L2Row{
		TsNs:  uint64(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).UnixNano()),
		Price: 10050,
		Qty:   0.25,
		Side:  model.SideBid,
	}
	if rows[0] != want {
		t.Errorf("row = %+v, want %+v", rows[0], want)
	}
}

func TestFrame_MultipleUpdatesInOrder(t *testing.T) {
	frame := `{"channel":"l2_data","timestamp":"2024-06-01T12:00:01Z","sequence_num":2,"events":[{"updates":[` +
		`{"side":"bid","event_time":"2024-06-01T12:00:01.1Z","price_level":"99.99","new_quantity":"1.5"},` +
		`{"side":"offer","event_time":"2024-06-01T12:00:01.2Z","price_level":"100.01","new_quantity":"2"},` +
		`{"side":"bid","event_time":"2024-06-01T12:00:01.3Z","price_level":"99.98","new_quantity":"0.000000001"}` +
		`]}]}`

	rows := collect(t, frame)
	if len(rows) != 3 {
		t.Fatalf("emitted %d rows, want 3", len(rows))
	}

	wantSides := []uint8{model.SideBid, model.SideAsk, model.SideBid}
	wantPrices := []uint32{9999, 10001, 9998}
	for i := range rows {
		if rows[i].Side != wantSides[i] {
			t.Errorf("row %d side = %d, want %d", i, rows[i].Side, wantSides[i])
		}
		if rows[i].Price != wantPrices[i] {
			t.Errorf("row %d price = %d, want %d", i, rows[i].Price, wantPrices[i])
		}
	}

	// Emission order is array order.
	for i := 1; i < len(rows); i++ {
		if rows[i].TsNs <= rows[i-1].TsNs {
			t.Errorf("row %d out of array order: ts %d after %d", i, rows[i].TsNs, rows[i-1].TsNs)
		}
	}
}

func TestFrame_IgnoresNonL2Frames(t *testing.T) {
	frames := []string{
		`{"channel":"heartbeats","timestamp":"2024-06-01T12:00:00Z","sequence_num":7}`,
		`{"channel":"subscriptions","events":[{"subscriptions":{"level2":["BTC-USD"]}}]}`,
		`{"type":"error","message":"authentication failure"}`,
		``,
		`{`,
	}

	for _, frame := range frames {
		if rows := collect(t, frame); len(rows) != 0 {
			t.Errorf("frame %.40q emitted %d rows, want 0", frame, len(rows))
		}
	}
}

func TestFrame_EmptyUpdates(t *testing.T) {
	frame := `{"channel":"l2_data","timestamp":"2024-06-01T12:00:00Z","events":[{"type":"update","updates":[]}]}`
	if rows := collect(t, frame); len(rows) != 0 {
		t.Errorf("empty updates emitted %d rows, want 0", len(rows))
	}
}

func TestFrame_RemovalFastPath(t *testing.T) {
	frame := `{"channel":"l2_data","events":[{"updates":[` +
		`{"side":"offer","event_time":"2024-06-01T12:00:00Z","price_level":"100.50","new_quantity":"0"}]}]}`

	rows := collect(t, frame)
	if len(rows) != 1 {
		t.Fatalf("emitted %d rows, want 1", len(rows))
	}
	if rows[0].Qty != 0 {
		t.Errorf("qty = %v, want 0", rows[0].Qty)
	}
	if rows[0].Side != model.SideAsk {
		t.Errorf("side = %d, want %d", rows[0].Side, model.SideAsk)
	}
}

func TestFrame_MalformedElementStopsFrame(t *testing.T) {
	// The second element is truncated mid-object; the first row survives,
	// nothing partial is emitted for the second.
	frame := `{"channel":"l2_data","events":[{"updates":[` +
		`{"side":"bid","event_time":"2024-06-01T12:00:00Z","price_level":"100.50","new_quantity":"0.25"},` +
		`{"side":"offer","event_time":"2024-06-01T12:00:01Z"`

	rows := collect(t, frame)
	if len(rows) != 1 {
		t.Fatalf("emitted %d rows, want 1", len(rows))
	}
	if rows[0].Price != 10050 {
		t.Errorf("surviving row price = %d, want 10050", rows[0].Price)
	}
}

func TestFrame_ManyElements(t *testing.T) {
	const k = 200
	frame := `{"channel":"l2_data","events":[{"updates":[`
	for i := 0; i < k; i++ {
		if i > 0 {
			frame += ","
		}
		side := "bid"
		if i%2 == 1 {
			side = "offer"
		}
		frame += fmt.Sprintf(
			`{"side":%q,"event_time":"2024-06-01T12:00:00.%09dZ","price_level":"%d.%02d","new_quantity":"%d.5"}`,
			side, i, 100+i, i%100, i,
		)
	}
	frame += `]}]}`

	rows := collect(t, frame)
	if len(rows) != k {
		t.Fatalf("emitted %d rows, want %d", len(rows), k)
	}
	for i, r := range rows {
		if wantPx := uint32((100+i)*100 + i%100); r.Price != wantPx {
			t.Errorf("row %d price = %d, want %d", i, r.Price, wantPx)
		}
		if wantQty := float32(i) + 0.5; r.Qty != wantQty {
			t.Errorf("row %d qty = %v, want %v", i, r.Qty, wantQty)
		}
	}
}

func TestFindByte(t *testing.T) {
	b := []byte(`{"side":"bid","event_time":"2024-06-01T12:00:00Z","price_level":"100.50"}`)

	tests := []struct {
		from int
		c    byte
		want int
	}{
		{0, '"', 1},
		{0, ':', 7},
		{2, '"', 6},   // within the near-scan window
		{0, '}', 72},  // far target exercises the SWAR stride
		{0, 'z', -1},  // absent
		{51, '"', 62}, // mid-buffer start
		{72, '}', 72}, // match at start position
		{73, '"', -1}, // start at end
	}

	for _, tt := range tests {
		if got := findByte(b, tt.from, len(b), tt.c); got != tt.want {
			t.Errorf("findByte(from=%d, %q) = %d, want %d", tt.from, tt.c, got, tt.want)
		}
	}

	// A bound below the match position hides it.
	if got := findByte(b, 0, 7, ':'); got != -1 {
		t.Errorf("findByte with tight bound = %d, want -1", got)
	}
}
