package feed

// DefaultURL is the Coinbase Advanced Trade WebSocket endpoint.
const DefaultURL = "wss://advanced-trade-ws.coinbase.com"

// Config configures a Feed.
type Config struct {
	URL  string // WebSocket endpoint; empty means DefaultURL
	Pair string // product to subscribe, e.g. "BTC-USD"

	// PinCPU is the CPU the read goroutine is pinned to. Negative
	// disables pinning.
	PinCPU int
}

// subscribeRequest is the single subscription message sent on connect.
// Field order matches the wire format the exchange documents.
type subscribeRequest struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channel    string   `json:"channel"`
}
