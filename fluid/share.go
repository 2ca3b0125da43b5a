package fluid

// Shares splits amount across n recipients: every recipient gets amount/n
// and the first amount%n recipients get one extra unit. The shares always
// sum to amount. n <= 0 yields nil; a negative amount is treated as 0.
//
// Example: Shares(17, 5) = [4 4 3 3 3].
//
// Complexity: O(n).
func Shares(amount, n int) []int {
	if n <= 0 {
		return nil
	}
	if amount < 0 {
		amount = 0
	}
	remaining := amount % n
	sending := (amount - remaining) / n

	out := make([]int, n)
	for i := range out {
		out[i] = sending
		if remaining > 0 {
			out[i]++
			remaining--
		}
	}
	return out
}

// proportional splits total across parts weighted by sizes, flooring each
// part and handing the remainder out one unit at a time in order.
// A zero total weight yields all zeros.
func proportional(total int, sizes []int) []int {
	out := make([]int, len(sizes))
	weight := 0
	for _, s := range sizes {
		weight += s
	}
	if total <= 0 || weight <= 0 {
		return out
	}
	given := 0
	for i, s := range sizes {
		out[i] = int(int64(total) * int64(s) / int64(weight))
		given += out[i]
	}
	for i := 0; given < total; i = (i + 1) % len(out) {
		if sizes[i] > 0 {
			out[i]++
			given++
		}
	}
	return out
}
