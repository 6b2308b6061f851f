package rates

import "fmt"

// Combine chains conversion tables A->B, B->C, ... into a single A->Z table.
// An hour appears in the result only when every link has a rate for it; the
// combined rate is the product along the chain.
func Combine(tables ...*Table) (*Table, error) {
	if len(tables) < 2 {
		return nil, fmt.Errorf("combining needs at least two tables")
	}
	for i := 1; i < len(tables); i++ {
		if tables[i].From != tables[i-1].To {
			return nil, fmt.Errorf("currency mismatch in chain: %s->%s then %s->%s",
				tables[i-1].From, tables[i-1].To, tables[i].From, tables[i].To)
		}
	}

	out := NewTable(tables[0].From, tables[len(tables)-1].To)
	for _, d := range tables[0].Dates() {
		rate, ok := tables[0].Rate(d)
		if !ok {
			continue
		}
		complete := true
		for _, t := range tables[1:] {
			r, found := t.Rate(d)
			if !found {
				complete = false
				break
			}
			rate = rate.Mul(r)
		}
		if complete {
			out.Set(d, rate)
		}
	}
	return out, nil
}
