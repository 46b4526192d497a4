package models

import (
	"errors"
	"fmt"
	"math"
)

// Coordinates is a [latitude, longitude] pair, encoded as a two element JSON array.
type Coordinates [2]float64

func NewCoordinates(lat, lng float64) Coordinates {
	return Coordinates{lat, lng}
}

func (c Coordinates) Lat() float64 { return c[0] }

func (c Coordinates) Lng() float64 { return c[1] }

// Validate checks that the pair is a finite, valid latitude/longitude.
func (c Coordinates) Validate() error {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("coordinates must be finite numbers")
		}
	}
	if c.Lat() < -90.0 || c.Lat() > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	if c.Lng() < -180.0 || c.Lng() > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat(), c.Lng())
}
