// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mood

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/trev-sykes/feels-aggregate/models"
)

// Random is the subset of *rand.Rand the draws need.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// lockedRand makes a *rand.Rand safe for concurrent requests
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandom returns a goroutine-safe source. Equal seeds give equal sequences.
func NewRandom(seed1, seed2 uint64) Random {
	return &lockedRand{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Bucket is an inclusive vote-count range with a relative selection weight.
type Bucket struct {
	Min    int
	Max    int
	Weight float64
}

// EmotionWeight is the relative likelihood of one emotion.
type EmotionWeight struct {
	Emotion models.Emotion
	Weight  float64
}

// VolumeBuckets is the hourly backfill volume distribution.
var VolumeBuckets = []Bucket{
	{Min: 0, Max: 0, Weight: 10},
	{Min: 1, Max: 5, Weight: 20},
	{Min: 6, Max: 15, Weight: 35},
	{Min: 16, Max: 40, Weight: 25},
	{Min: 41, Max: 80, Weight: 10},
}

// BackfillEmotionWeights is the emotion mix for hourly backfill.
var BackfillEmotionWeights = []EmotionWeight{
	{models.Happy, 30},
	{models.Content, 25},
	{models.Neutral, 20},
	{models.Stressed, 12},
	{models.Sad, 8},
	{models.Angry, 5},
}

// SimulationEmotionWeights is the emotion mix for bulk historical simulation.
var SimulationEmotionWeights = []EmotionWeight{
	{models.Happy, 0.18},
	{models.Content, 0.32},
	{models.Neutral, 0.30},
	{models.Stressed, 0.10},
	{models.Sad, 0.07},
	{models.Angry, 0.03},
}

var ErrBadWeights = errors.New("invalid weight table")

// cumulative is a running-sum table over weights; draw maps a uniform value
// in [0, total) back to an index.
type cumulative struct {
	sums  []float64
	total float64
}

func newCumulative(weights []float64) (cumulative, error) {
	if len(weights) == 0 {
		return cumulative{}, fmt.Errorf("%w: empty", ErrBadWeights)
	}
	sums := make([]float64, len(weights))
	var total float64
	for i, w := range weights {
		if w < 0 {
			return cumulative{}, fmt.Errorf("%w: negative weight %v at %d", ErrBadWeights, w, i)
		}
		total += w
		sums[i] = total
	}
	if total <= 0 {
		return cumulative{}, fmt.Errorf("%w: weights sum to zero", ErrBadWeights)
	}
	return cumulative{sums: sums, total: total}, nil
}

func (c cumulative) draw(r Random) int {
	x := r.Float64() * c.total
	// First entry whose running sum exceeds x; zero-weight entries never match
	i := sort.Search(len(c.sums), func(i int) bool { return c.sums[i] > x })
	if i == len(c.sums) {
		i = len(c.sums) - 1
	}
	return i
}

// VolumeTable draws a total vote count for one synthetic hour.
type VolumeTable struct {
	buckets []Bucket
	cum     cumulative
}

func NewVolumeTable(buckets []Bucket) (*VolumeTable, error) {
	weights := make([]float64, len(buckets))
	for i, b := range buckets {
		if b.Min < 0 || b.Max < b.Min {
			return nil, fmt.Errorf("%w: bucket %d range [%d, %d]", ErrBadWeights, i, b.Min, b.Max)
		}
		weights[i] = b.Weight
	}
	cum, err := newCumulative(weights)
	if err != nil {
		return nil, err
	}
	return &VolumeTable{buckets: buckets, cum: cum}, nil
}

// Draw picks a bucket by weight, then a uniform count inside it.
func (t *VolumeTable) Draw(r Random) int {
	b := t.buckets[t.cum.draw(r)]
	return b.Min + r.IntN(b.Max-b.Min+1)
}

// EmotionTable draws emotions by weight.
type EmotionTable struct {
	emotions []models.Emotion
	cum      cumulative
}

func NewEmotionTable(weights []EmotionWeight) (*EmotionTable, error) {
	emotions := make([]models.Emotion, len(weights))
	ws := make([]float64, len(weights))
	for i, w := range weights {
		if !w.Emotion.Valid() {
			return nil, fmt.Errorf("%w: unknown emotion %q", ErrBadWeights, w.Emotion)
		}
		emotions[i] = w.Emotion
		ws[i] = w.Weight
	}
	cum, err := newCumulative(ws)
	if err != nil {
		return nil, err
	}
	return &EmotionTable{emotions: emotions, cum: cum}, nil
}

func (t *EmotionTable) Draw(r Random) models.Emotion {
	return t.emotions[t.cum.draw(r)]
}

// Distribute spreads total votes across emotions one draw at a time. Only
// emotions that received at least one vote appear in the result.
func (t *EmotionTable) Distribute(r Random, total int) map[models.Emotion]int {
	counts := make(map[models.Emotion]int)
	for i := 0; i < total; i++ {
		counts[t.Draw(r)]++
	}
	return counts
}

func mustVolumeTable(b []Bucket) *VolumeTable {
	t, err := NewVolumeTable(b)
	if err != nil {
		panic(err)
	}
	return t
}

func mustEmotionTable(w []EmotionWeight) *EmotionTable {
	t, err := NewEmotionTable(w)
	if err != nil {
		panic(err)
	}
	return t
}
