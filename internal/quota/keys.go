package quota

import "time"

// Counter keys encode the UTC date so every day starts with a logically
// fresh counter. The previous day's key is left to expire on its own.
func dateStamp(t time.Time) string {
	return t.UTC().Format("20060102")
}

func allowanceKey(identity string, t time.Time) string {
	return "quota:" + dateStamp(t) + ":" + identity
}

func budgetKey(t time.Time) string {
	return "budget:" + dateStamp(t)
}

func paidKey(identity string, t time.Time) string {
	return "paid:" + dateStamp(t) + ":" + identity
}
