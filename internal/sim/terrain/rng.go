package terrain

import "skystream/internal/sim/mathx"

// Salt layout per chunk. Feature draws start at saltFeature and advance by
// saltPerFeature per feature, so every decision gets its own independent-looking
// value from the same base seed. Changing this layout changes the whole world.
const (
	saltDensity = 0
	saltTint    = 1
	saltCount   = 2
	saltVariant = 3

	saltFeature    = 8
	saltPerFeature = 8

	saltOffX  = 0
	saltOffZ  = 1
	saltSizeW = 2
	saltSizeH = 3
	saltSizeD = 4
	saltColor = 5
)

// saltStride spreads salts far apart in seed space so neighbouring salts do
// not produce correlated hashes.
const saltStride = 0x9e3779b9

// chunkRand derives reproducible draws for one chunk. It is a pure view over
// (seed, coord); it holds no mutable state.
type chunkRand struct {
	seed  int64
	coord ChunkCoord
}

// unit returns a value in [0, 1) for the given salt.
func (r chunkRand) unit(salt int) float64 {
	return mathx.Unit(mathx.Hash2(r.seed+int64(salt)*saltStride, r.coord.X, r.coord.Z))
}

// between returns a value in [lo, hi).
func (r chunkRand) between(salt int, lo, hi float64) float64 {
	return lo + r.unit(salt)*(hi-lo)
}

// count returns an integer in [cr.Min, cr.Max].
func (r chunkRand) count(salt int, cr CountRange) int {
	return cr.Min + int(r.unit(salt)*float64(cr.Max-cr.Min+1))
}

// pick returns an index in [0, n).
func (r chunkRand) pick(salt, n int) int {
	return int(r.unit(salt) * float64(n))
}
