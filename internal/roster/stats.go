package roster

// AgeBucket patients per age range; Max 0 means open ended
type AgeBucket struct {
	Label string `json:"age"`
	Min   int    `json:"min"`
	Max   int    `json:"max,omitempty"`
	Count int    `json:"count"`
}

// Stats dashboard counters
type Stats struct {
	Total           int         `json:"total"`
	Selected        int         `json:"selected"`
	SelectedPercent int         `json:"selected_percent"`
	Ghosts          int         `json:"ghosts"`
	AgeDistribution []AgeBucket `json:"age_distribution"`
}

func ageBuckets() []AgeBucket {
	return []AgeBucket{
		{Label: "18-25", Min: 18, Max: 25},
		{Label: "26-35", Min: 26, Max: 35},
		{Label: "36-45", Min: 36, Max: 45},
		{Label: "46-55", Min: 46, Max: 55},
		{Label: "56+", Min: 56},
	}
}

// Stats computes the dashboard counters. Patients under 18 are counted in
// Total but fall in no bucket.
func (r *Roster) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Total:           len(r.patients),
		Selected:        len(r.selected),
		Ghosts:          len(r.ghosts),
		AgeDistribution: ageBuckets(),
	}
	if s.Total > 0 {
		s.SelectedPercent = s.Selected * 100 / s.Total
	}

	for _, p := range r.patients {
		for i := range s.AgeDistribution {
			b := &s.AgeDistribution[i]
			if p.Age >= b.Min && (b.Max == 0 || p.Age <= b.Max) {
				b.Count++
				break
			}
		}
	}
	return s
}
