package loan

import "cloud.google.com/go/civil"

// ClassifyPayment maps the day delta between payment and due date to a
// timeliness status. Up to 5 days past due still counts as on time (early
// payments are arbitrarily negative deltas and land in the same band).
//
// Called exactly once, when the payment is recorded; the result is stored and
// never recomputed on read. StatusUnpaid is never returned here: it is
// assigned by the join engine when a loan has no payment at all.
func ClassifyPayment(paymentDate, dueDate civil.Date) string {
	delta := paymentDate.DaysSince(dueDate)
	switch {
	case delta <= 5:
		return StatusOnTime
	case delta <= 30:
		return StatusLate
	default:
		return StatusDefaulted
	}
}
