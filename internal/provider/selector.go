package provider

// SelectProvider is the deterministic attempt-number rule spec.md §4.3
// stage 2 and §9 describe, replacing the original's dynamic
// PaymentProviderFactory dispatch map. Attempts 1-2 use the currency's
// primary provider, attempt 3 fails over to its secondary. Nigerian naira
// withdrawals route through Flutterwave/Paystack; Kenyan shilling
// withdrawals have only one integrated rail (M-Pesa) and stay on it for
// every attempt.
func SelectProvider(currency string, attemptNumber int) Name {
	switch currency {
	case "KES":
		return Mpesa
	default: // NGN and anything else routes through the naira rails
		if attemptNumber >= 3 {
			return Paystack
		}
		return Flutterwave
	}
}
