package indicator

// wilderMean is a running average seeded with the simple mean of the first
// n samples and then smoothed as avg = (avg*(n-1) + x) / n.
type wilderMean struct {
	n     int
	count int
	sum   float64
	avg   float64
}

// add feeds x and reports whether the average is seeded.
func (w *wilderMean) add(x float64) bool {
	w.count++
	if w.count <= w.n {
		w.sum += x
		if w.count == w.n {
			w.avg = w.sum / float64(w.n)
		}
		return w.count == w.n
	}
	w.avg = (w.avg*float64(w.n-1) + x) / float64(w.n)
	return true
}

func (w *wilderMean) seeded() bool {
	return w.count >= w.n
}

func (w *wilderMean) reset() {
	*w = wilderMean{n: w.n}
}
