package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ChunkCoord identifies a cell of the fixed-size square chunk grid.
type ChunkCoord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// CoordAt returns the chunk containing the given world position, by floor
// division of the XZ components.
func CoordAt(pos mgl64.Vec3, chunkSize float64) ChunkCoord {
	return ChunkCoord{
		X: int(math.Floor(pos.X() / chunkSize)),
		Z: int(math.Floor(pos.Z() / chunkSize)),
	}
}

// Center returns the chunk's world-space center at ground level.
func (c ChunkCoord) Center(chunkSize float64) mgl64.Vec3 {
	return mgl64.Vec3{float64(c.X) * chunkSize, 0, float64(c.Z) * chunkSize}
}

// distXZ is the Euclidean distance from the chunk center to pos in the XZ
// plane. Altitude is ignored everywhere in streaming decisions.
func (c ChunkCoord) distXZ(pos mgl64.Vec3, chunkSize float64) float64 {
	center := c.Center(chunkSize)
	return math.Hypot(center.X()-pos.X(), center.Z()-pos.Z())
}

func coordLess(a, b ChunkCoord) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Z < b.Z
}
