package evaluation

import "math"

// AverageHistory reduces a snapshot history to one averaged snapshot. Totals
// and every sub-metric and breakdown value are summed across the history and
// divided by the full history length, rounding half away from zero once per
// aggregate value.
//
// A key that is missing from some snapshots still divides by the full count,
// so its average is understated. Stored data was produced under this rule;
// changing the denominator would shift displayed scores, so the behavior is
// kept.
func AverageHistory(history []Snapshot) (Snapshot, bool) {
	if len(history) == 0 {
		return Snapshot{}, false
	}

	count := float64(len(history))
	averaged := Snapshot{
		Sub:       map[string]map[string]float64{},
		Breakdown: map[string]Criterion{},
	}

	for _, item := range history {
		averaged.Total += item.Total

		for section, metrics := range item.Sub {
			if averaged.Sub[section] == nil {
				averaged.Sub[section] = map[string]float64{}
			}
			for key, score := range metrics {
				averaged.Sub[section][key] += score
			}
		}

		for key, criterion := range item.Breakdown {
			entry := averaged.Breakdown[key]
			entry.Points += criterion.Points
			averaged.Breakdown[key] = entry
		}
	}

	averaged.Total = math.Round(averaged.Total / count)

	for section, metrics := range averaged.Sub {
		for key, sum := range metrics {
			averaged.Sub[section][key] = math.Round(sum / count)
		}
	}

	for key, entry := range averaged.Breakdown {
		entry.Points = math.Round(entry.Points / count)
		averaged.Breakdown[key] = entry
	}

	return averaged, true
}
