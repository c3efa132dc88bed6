package parser

// daysFromCivil converts a (year, month, day) civil date to days since
// 1970-01-01 using Howard Hinnant's algorithm.
func daysFromCivil(y, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 {
		era = (y - 399) / 400
	}
	yoe := y - era*400
	mp := m - 3
	if m <= 2 {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + yoe/400 + doy
	return int64(era)*146097 + int64(doe) - 719468
}

// parseRFC3339NS converts a timestamp of the form
// YYYY-MM-DDTHH:MM:SS[.fraction]Z to epoch nanoseconds. The mandatory
// slots are read by fixed offset; the optional fraction is consumed up to
// nine digits and right-padded to nanosecond significance. The date
// conversion for the last (Y,M,D) seen is cached: consecutive updates
// almost always share a day.
func (p *Parser) parseRFC3339NS(b []byte) uint64 {
	y := int(b[0]-'0')*1000 + int(b[1]-'0')*100 + int(b[2]-'0')*10 + int(b[3]-'0')
	mo := int(b[5]-'0')*10 + int(b[6]-'0')
	d := int(b[8]-'0')*10 + int(b[9]-'0')
	hh := int(b[11]-'0')*10 + int(b[12]-'0')
	mm := int(b[14]-'0')*10 + int(b[15]-'0')
	ss := int(b[17]-'0')*10 + int(b[18]-'0')

	ymd := y*10000 + mo*100 + d
	if ymd != p.lastYMD {
		p.lastDays = daysFromCivil(y, mo, d)
		p.lastYMD = ymd
	}

	var fracNS uint32
	if i := 19; i < len(b) && b[i] == '.' {
		i++
		n := 0
		for i < len(b) && n < 9 && b[i] >= '0' && b[i] <= '9' {
			fracNS = fracNS*10 + uint32(b[i]-'0')
			i++
			n++
		}
		for ; n < 9; n++ {
			fracNS *= 10
		}
	}

	secs := p.lastDays*86400 + int64(hh)*3600 + int64(mm)*60 + int64(ss)
	return uint64(secs)*1_000_000_000 + uint64(fracNS)
}
