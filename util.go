package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"

	"github.com/jakecoffman/cp"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Direction returns the unit vector pointing from -> to, or zero if they coincide
func Direction(from, to cp.Vector) cp.Vector {
	d := to.Sub(from)
	l := d.Length()
	if l < 1e-9 {
		return cp.Vector{}
	}
	return d.Mult(1 / l)
}

// Facing quantizes a direction into one of 8 compass sectors (0 = east, counter-clockwise)
func Facing(v cp.Vector, fallback uint8) uint8 {
	if v.LengthSq() < 1e-6 {
		return fallback
	}
	sector := int(math.Round(math.Atan2(v.Y, v.X) / (math.Pi / 4)))
	return uint8((sector + 8) % 8)
}

// Mirror reflects point p through center c
func Mirror(p, c cp.Vector) cp.Vector {
	return c.Mult(2).Sub(p)
}

// Percent converts value/max into a 0-100 byte
func Percent(value, max float64) uint8 {
	if max <= 0 || value <= 0 {
		return 0
	}
	return uint8(Clamp(math.Ceil(value/max*100), 0, 100))
}

// facingVector is the unit vector of an 8-way facing sector
func facingVector(facing uint8) cp.Vector {
	return cp.ForAngle(float64(facing%8) * math.Pi / 4)
}
