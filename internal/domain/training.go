package domain

import "time"

type Training struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	Venue          string     `json:"venue"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	GeofenceRadius uint       `json:"geofence_radius"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Timezone       string     `json:"timezone"`
	QRToken        string     `json:"-"`
	TokenIssuedAt  *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Location resolves the training's venue timezone, falling back to the
// given zone name when the training carries none.
func (t Training) Location(fallback string) (*time.Location, error) {
	name := t.Timezone
	if name == "" {
		name = fallback
	}

	return time.LoadLocation(name)
}
