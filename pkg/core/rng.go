package core

import "math/rand"

// RNG is the per-pixel random source the shading kernel and scheduler share.
type RNG interface {
	Float64() float64
	Rand2f() (float64, float64)
	Intn(n int) int
}

// pcg32 is a small, fast, statistically solid PRNG (O'Neill's PCG family) used
// for per-pixel sample generation. Two streams seeded from the same (seed,
// stream) pair always produce the same sequence, which is what makes
// pixel-to-pixel decorrelation and run-to-run reproducibility possible.
type pcg32 struct {
	state, inc uint64
}

const pcgMultiplier = 6364136223846793005

// NewRNG creates a pixel RNG from a user seed and a decorrelation stream id.
// The stream id must be odd (PCG requires an odd increment); callers get odd
// stream ids from NewStreamSequence.
func NewRNG(seed uint64, stream uint64) RNG {
	r := &pcg32{}
	r.inc = (stream << 1) | 1
	r.step()
	r.state += seed
	r.step()
	return r
}

func (r *pcg32) step() {
	r.state = r.state*pcgMultiplier + r.inc
}

func (r *pcg32) nextUint32() uint32 {
	old := r.state
	r.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Float64 returns a uniform sample in [0, 1).
func (r *pcg32) Float64() float64 {
	return float64(r.nextUint32()) / 4294967296.0
}

// Rand2f returns a pair of uniform samples in [0, 1), drawn in a fixed order
// so that a single call advances the stream deterministically.
func (r *pcg32) Rand2f() (float64, float64) {
	return r.Float64(), r.Float64()
}

// Intn returns a uniform integer in [0, n).
func (r *pcg32) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// NewStreamSequence returns a deterministic generator of 31-bit odd stream
// ids, used to hand every pixel its own decorrelated RNG stream. It is itself
// backed by a master RNG seeded with a fixed constant, per spec: the master
// sequence never depends on the caller's seed, only the per-pixel streams do.
func NewStreamSequence() func() uint64 {
	const masterSeedConstant uint64 = 0x853c49e6748fea9b
	masterSeed := masterSeedConstant
	master := rand.New(rand.NewSource(int64(masterSeed)))
	return func() uint64 {
		return uint64(master.Int31()) | 1
	}
}
