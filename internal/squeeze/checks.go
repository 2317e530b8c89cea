package squeeze

import "math"

const (
	gainThreshold      = 5.0   // percent
	uptrendStep        = 1.025 // per-day close growth for the inclusion uptrend
	yearlyLowBand      = 1.35
	aboveAvgVolume     = 1.5
	minDaysAboveVolume = 2
	priceTrendStep     = 1.05
	highShortPct       = 5.0
	squeezeShortPct    = 15.0
	squeezeGainPct     = 10.0

	uptrendDays     = 4
	volumeDays      = 10
	volumeTrendDays = 6
	priceTrendDays  = 6
)

// PercentChange is the move from prevClose to current in percent, rounded
// to three decimals.
func PercentChange(current, prevClose float64) float64 {
	if prevClose == 0 {
		return 0
	}
	return round3((current/prevClose - 1) * 100)
}

// Included reports whether a ticker enters the watchlist: a gain of at
// least 5% or any gain on top of a short price uptrend.
func Included(pctChange float64, closes []float64) bool {
	return pctChange >= gainThreshold || (pctChange > 0 && IsPriceUptrend(closes))
}

// IsPriceUptrend checks that each of the last four completed closes is at
// least 2.5% above the one before. closes run oldest to newest.
func IsPriceUptrend(closes []float64) bool {
	if len(closes) > uptrendDays {
		closes = closes[len(closes)-uptrendDays:]
	}
	prev := 0.0
	for _, c := range closes {
		if c < prev*uptrendStep {
			return false
		}
		prev = c
	}
	return true
}

// NearYearlyLow reports whether price sits within 35% of the 52-week low
func NearYearlyLow(price, yearLow float64) bool {
	return price <= yearLow*yearlyLowBand
}

// VolumeTrend scans the last ten completed sessions. It counts sessions
// trading above 1.5x the average volume and runs the up/down streak
// counters over the most recent six of them.
func VolumeTrend(volumes []float64, avgVolume float64) (uptrend bool, daysAbove int) {
	if len(volumes) > volumeDays {
		volumes = volumes[len(volumes)-volumeDays:]
	}
	trendFrom := len(volumes) - volumeTrendDays
	if trendFrom < 0 {
		trendFrom = 0
	}

	var (
		prev     float64
		up, down int
		flags    []bool
	)
	for i, v := range volumes {
		if v > aboveAvgVolume*avgVolume {
			daysAbove++
		}
		if i >= trendFrom {
			if prev < v {
				up++
				down = 0
				flags = append(flags, true)
			} else {
				down++
				flags = append(flags, false)
			}

			// only a rising session breaks a falling streak
			if down >= 2 {
				up = 0
				uptrend = false
			} else if up >= 3 {
				uptrend = true
			}
		}
		prev = v
	}

	if !uptrend && len(flags) >= 4 {
		uptrend = true
		for _, f := range flags[len(flags)-4:] {
			if !f {
				uptrend = false
				break
			}
		}
	}
	return uptrend, daysAbove
}

// PriceTrend takes a baseline close followed by six sessions and allows at
// most one session that failed to gain 5% on the previous close.
func PriceTrend(closes []float64) bool {
	if len(closes) > priceTrendDays+1 {
		closes = closes[len(closes)-priceTrendDays-1:]
	}
	if len(closes) == 0 {
		return false
	}

	down := 0
	prev := closes[0]
	for _, c := range closes[1:] {
		if c < prev*priceTrendStep {
			down++
		}
		if down > 1 {
			return false
		}
		prev = c
	}
	return true
}

// ShortsBeta evaluates the short interest and beta flags. Missing
// statistics leave their flags false.
func ShortsBeta(shortPct, beta *float64, pctChange float64) (highSharesChange, highShortShares, highBeta bool) {
	if shortPct != nil {
		highSharesChange = *shortPct >= squeezeShortPct && pctChange >= squeezeGainPct
		highShortShares = *shortPct >= highShortPct
	}
	if beta != nil {
		highBeta = !(*beta > -1 && *beta < 1)
	}
	return
}

// ShortsPain is short interest weighted by the day's move
func ShortsPain(shortPct *float64, pctChange float64) float64 {
	if shortPct == nil {
		return 0
	}
	return round3(*shortPct * pctChange)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
