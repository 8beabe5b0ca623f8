package domain

import "math"

// Fixed processor fee model: 2.9% + 0.20 on the net total.
const (
	gatewayFeeRate = 2.9
	gatewayFeeBase = 0.20
)

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func Ceil2(v float64) float64 {
	return math.Ceil(v*100) / 100
}

// GatewayCharges returns the processor surcharge for a given net total.
func GatewayCharges(netTotal float64) float64 {
	return Ceil2(netTotal*gatewayFeeRate/100 + gatewayFeeBase)
}
