package models

// Profile holds the local user's display settings.
type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Snapshot is the complete application state handed to the core.
type Snapshot struct {
	Habits  []Habit `json:"habits"`
	Profile Profile `json:"profile"`
}

// FindHabit returns the index of the habit with the given ID, or -1.
func (s Snapshot) FindHabit(id string) int {
	for i, h := range s.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}
