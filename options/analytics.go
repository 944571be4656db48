package options

import "time"

// Skew compares out-of-the-money and in-the-money implied volatility for
// calls and puts around the at-the-money strike.
type Skew struct {
	CallSkew float64
	PutSkew  float64
	ATMIV    float64
}

// IVSkew buckets the chain by moneyness around atmStrike using the given
// window fraction and reports mean OTM-minus-ITM IV per side. Empty buckets
// report 0.
func IVSkew(ch Chain, atmStrike, window float64) Skew {
	if len(ch) == 0 || atmStrike <= 0 {
		return Skew{}
	}

	var (
		otmCalls, itmCalls meanAcc
		otmPuts, itmPuts   meanAcc
		atm                meanAcc
	)
	hi := atmStrike * (1 + window)
	lo := atmStrike * (1 - window)

	for _, c := range ch {
		switch {
		case c.Strike >= atmStrike*0.98 && c.Strike <= atmStrike*1.02:
			atm.add(c.IV)
		}
		switch c.Type {
		case Call:
			if c.Strike > hi {
				otmCalls.add(c.IV)
			} else if c.Strike < lo {
				itmCalls.add(c.IV)
			}
		case Put:
			if c.Strike < lo {
				otmPuts.add(c.IV)
			} else if c.Strike > hi {
				itmPuts.add(c.IV)
			}
		}
	}

	var s Skew
	if otmCalls.n > 0 && itmCalls.n > 0 {
		s.CallSkew = otmCalls.mean() - itmCalls.mean()
	}
	if otmPuts.n > 0 && itmPuts.n > 0 {
		s.PutSkew = otmPuts.mean() - itmPuts.mean()
	}
	s.ATMIV = atm.mean()
	return s
}

// Term holds mean implied volatility by days-to-expiry bucket: up to a week,
// a week to a month, beyond a month.
type Term struct {
	ShortIV float64
	MidIV   float64
	LongIV  float64
}

// TermStructure buckets the chain by days to expiry relative to now and
// reports the mean IV of each bucket, 0 for empty buckets.
func TermStructure(ch Chain, now time.Time) Term {
	var short, mid, long meanAcc
	for _, c := range ch {
		days := c.Expiry.Sub(now).Hours() / 24
		switch {
		case days <= 7:
			short.add(c.IV)
		case days <= 30:
			mid.add(c.IV)
		default:
			long.add(c.IV)
		}
	}
	return Term{
		ShortIV: short.mean(),
		MidIV:   mid.mean(),
		LongIV:  long.mean(),
	}
}

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	m.sum += v
	m.n++
}

func (m *meanAcc) mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
