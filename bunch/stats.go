package bunch

import (
	"math"
)

// MinMaxPositions reduces the minimum and maximum of the three position
// components over every live particle in the container. Particles marked
// lost are excluded — they no longer belong to the beam even before the
// sweep relocates them.
func (c *Container) MinMaxPositions() (min, max [3]float64) {
	for k := 0; k < 3; k++ {
		min[k] = math.Inf(1)
		max[k] = math.Inf(-1)
	}

	for i := range c.tiles {
		tile := &c.tiles[i]
		for j := 0; j < tile.Len(); j++ {
			if tile.id[j] < 0 {
				continue
			}
			pos := [3]float64{tile.x[j], tile.y[j], tile.t[j]}
			for k := 0; k < 3; k++ {
				if pos[k] < min[k] {
					min[k] = pos[k]
				}
				if pos[k] > max[k] {
					max[k] = pos[k]
				}
			}
		}
	}
	return min, max
}

// MeanStdPositions reduces the weighted mean and standard deviation of the
// three position components over every live particle. The reduction
// accumulates weighted sums tile by tile, the same merge the distributed
// runtime performs across ranks.
func (c *Container) MeanStdPositions() (mean, std [3]float64) {
	var wSum float64
	var sum, sum2 [3]float64

	for i := range c.tiles {
		tile := &c.tiles[i]
		for j := 0; j < tile.Len(); j++ {
			if tile.id[j] < 0 {
				continue
			}
			w := tile.w[j]
			pos := [3]float64{tile.x[j], tile.y[j], tile.t[j]}
			wSum += w
			for k := 0; k < 3; k++ {
				sum[k] += w * pos[k]
				sum2[k] += w * pos[k] * pos[k]
			}
		}
	}

	if wSum == 0 {
		return mean, std
	}

	for k := 0; k < 3; k++ {
		mean[k] = sum[k] / wSum
		variance := sum2[k]/wSum - mean[k]*mean[k]
		if variance > 0 {
			std[k] = math.Sqrt(variance)
		}
	}
	return mean, std
}
