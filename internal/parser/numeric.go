package parser

import "github.com/rickgao/l2-recorder/internal/model"

// negative powers of ten, indexed by fractional digit count
var inv10 = [10]float32{
	1, 1e-1, 1e-2, 1e-3, 1e-4, 1e-5, 1e-6, 1e-7, 1e-8, 1e-9,
}

// parsePrice reads a quoted-decimal price from the start of b and returns
// it scaled by model.PriceScale. The feed emits at most two fractional
// digits; anything beyond the second is truncated. Parsing stops at the
// first non-digit, non-dot byte (the closing quote).
func parsePrice(b []byte) uint32 {
	var intPart uint32
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		intPart = intPart*10 + uint32(b[i]-'0')
		i++
	}
	if i < len(b) && b[i] == '.' {
		i++
		var frac uint32
		if i < len(b) && b[i] >= '0' && b[i] <= '9' {
			frac += uint32(b[i]-'0') * 10
			i++
		}
		if i < len(b) && b[i] >= '0' && b[i] <= '9' {
			frac += uint32(b[i] - '0')
		}
		return intPart*model.PriceScale + frac
	}
	return intPart * model.PriceScale
}

// parseQty reads a quoted-decimal quantity from the start of b. The
// integer and fractional parts accumulate in uint64; up to nine
// fractional digits are honored and scaled through the inv10 table.
func parseQty(b []byte) float32 {
	var intPart uint64
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		intPart = intPart*10 + uint64(b[i]-'0')
		i++
	}
	if i >= len(b) || b[i] != '.' {
		return float32(intPart)
	}
	i++
	var frac uint64
	n := 0
	for i < len(b) && n < 9 && b[i] >= '0' && b[i] <= '9' {
		frac = frac*10 + uint64(b[i]-'0')
		i++
		n++
	}
	return float32(intPart) + float32(frac)*inv10[n]
}
