package timezone

import (
	"fmt"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

// Finder resolves the IANA zone of a point.
type Finder struct {
	finder tzf.F
	mu     sync.RWMutex
}

var (
	instance *Finder
	initErr  error
	once     sync.Once
)

// Default returns the process-wide finder. tzf keeps its polygon index in
// memory, so it is built once.
func Default() (*Finder, error) {
	once.Do(func() {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			initErr = fmt.Errorf("failed to initialize timezone finder: %w", err)
			return
		}
		instance = &Finder{finder: finder}
	})
	return instance, initErr
}

// ZoneName returns the IANA zone name such as "America/Los_Angeles".
func (f *Finder) ZoneName(latitude, longitude float64) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	name := f.finder.GetTimezoneName(longitude, latitude)
	if name == "" {
		return "", fmt.Errorf("could not determine timezone for coordinates lat=%f, lon=%f", latitude, longitude)
	}
	return name, nil
}

// Zone returns the loaded time.Location for the point.
func (f *Finder) Zone(latitude, longitude float64) (*time.Location, error) {
	name, err := f.ZoneName(latitude, longitude)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// Lookup resolves the zone through the shared finder, building it on first use.
func Lookup(latitude, longitude float64) (*time.Location, error) {
	f, err := Default()
	if err != nil {
		return nil, err
	}
	return f.Zone(latitude, longitude)
}
