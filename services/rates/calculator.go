package rates

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services"
)

// basisPoints is the denominator of percentage rates (4000 = 40%)
const basisPoints = 10000

// PayInput is what a booking contributes to a pay calculation
type PayInput struct {
	RevenueCents    int64
	DurationMinutes int64
}

// Resolve picks the rate that applies to a photographer for a service type.
// An active rate for the exact service type wins over the active default rate.
func Resolve(rates []*models.PhotographerRate, photographerID uuid.UUID, serviceType string) (*models.PhotographerRate, error) {
	serviceType = models.NormalizeServiceType(serviceType)

	var fallback *models.PhotographerRate
	for _, r := range rates {
		if !r.IsActive || r.PhotographerID != photographerID {
			continue
		}
		if r.IsDefault() {
			if fallback == nil {
				fallback = r
			}
			continue
		}
		if serviceType != "" && models.NormalizeServiceType(*r.ServiceType) == serviceType {
			return r, nil
		}
	}
	if fallback == nil {
		return nil, services.ErrRateNotFound
	}
	return fallback, nil
}

// Calculate applies the rate formula to input and clamps the result to the rate bounds
func Calculate(rate *models.PhotographerRate, input PayInput) (int64, error) {
	if input.RevenueCents < 0 || input.DurationMinutes < 0 {
		return 0, services.Validation("revenue and duration cannot be negative")
	}
	if rate.RateValue < 0 {
		return 0, services.Validation("rate value cannot be negative")
	}

	var amount int64
	switch rate.RateType {
	case models.RateTypePercentage:
		amount = divRoundHalfUp(input.RevenueCents*rate.RateValue, basisPoints)
	case models.RateTypeFixed:
		amount = rate.RateValue
	case models.RateTypeHourly:
		amount = divRoundHalfUp(rate.RateValue*input.DurationMinutes, 60)
	default:
		return 0, services.Validation(fmt.Sprintf("unknown rate type %q", rate.RateType))
	}

	if rate.MinPayoutCents != nil && amount < *rate.MinPayoutCents {
		amount = *rate.MinPayoutCents
	}
	if rate.MaxPayoutCents != nil && amount > *rate.MaxPayoutCents {
		amount = *rate.MaxPayoutCents
	}
	return amount, nil
}

// divRoundHalfUp divides non-negative n by d rounding halves up
func divRoundHalfUp(n, d int64) int64 {
	return (n + d/2) / d
}
