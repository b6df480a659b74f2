package monitor

import "time"

// Status is the outcome of the latest storage probe.
type Status struct {
	Driver    string    `json:"driver"`
	Storage   bool      `json:"storage"`
	LastCheck time.Time `json:"last_check"`
}
