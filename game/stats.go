package game

var lineScores = [5]int{0, 100, 300, 500, 800}

type Stats struct {
	Level int `json:"level"`
	Score int `json:"score"`
	Lines int `json:"lines"`
	Combo int `json:"combo"`
}

func NewStats() Stats {
	return Stats{Level: 1, Combo: -1}
}

// Update scores a placement that cleared the given number of rows. Back to
// back clears add a combo bonus on top of the line score.
func (s *Stats) Update(cleared int) {
	if cleared > 0 {
		s.Lines += cleared
		if level := s.Lines/10 + 1; level > s.Level {
			s.Level = level
		}
		if cleared >= len(lineScores) {
			cleared = len(lineScores) - 1
		}
		s.Score += lineScores[cleared] * s.Level
		s.Combo++
	} else {
		s.Combo = -1
	}
	if s.Combo > 0 {
		s.Score += 50 * s.Combo * s.Level
	}
}
