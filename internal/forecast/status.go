package forecast

import "github.com/mekedron/airq-cli/internal/domain"

// FailedMessage is the only error text the store ever exposes.
const FailedMessage = "Failed to load forecast data. Check backend connection."

// Status is the request lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Snapshot is a consistent read of the store. Derived fields are computed at
// commit time from the same state as the rest of the snapshot.
type Snapshot struct {
	Seq              uint64                 `json:"seq" yaml:"seq"`
	Status           Status                 `json:"status" yaml:"status"`
	Loading          bool                   `json:"loading" yaml:"loading"`
	Error            string                 `json:"error,omitempty" yaml:"error,omitempty"`
	CurrentLatitude  float64                `json:"current_latitude" yaml:"current_latitude"`
	CurrentLongitude float64                `json:"current_longitude" yaml:"current_longitude"`
	ForecastData     *domain.ForecastSeries `json:"forecast_data" yaml:"forecast_data"`
	ActiveHourIndex  int                    `json:"active_hour_index" yaml:"active_hour_index"`
	ActiveDataPoint  *domain.DataPoint      `json:"active_data_point" yaml:"active_data_point"`
	MapCenter        domain.Location        `json:"map_center" yaml:"map_center"`
}

// Requested returns the most recently requested point.
func (s Snapshot) Requested() domain.Location {
	return domain.Location{Lat: s.CurrentLatitude, Lon: s.CurrentLongitude}
}

// Horizon returns the number of selectable hours.
func (s Snapshot) Horizon() int {
	return horizonOf(s.ForecastData)
}

type state struct {
	seq       uint64
	requested domain.Location
	series    *domain.ForecastSeries
	cursor    int
	status    Status
	err       string
}

func (st state) snapshot() Snapshot {
	return Snapshot{
		Seq:              st.seq,
		Status:           st.status,
		Loading:          st.status == StatusLoading,
		Error:            st.err,
		CurrentLatitude:  st.requested.Lat,
		CurrentLongitude: st.requested.Lon,
		ForecastData:     st.series,
		ActiveHourIndex:  st.cursor,
		ActiveDataPoint:  ActiveDataPoint(st.series, st.cursor),
		MapCenter:        MapCenter(st.series, st.requested),
	}
}
