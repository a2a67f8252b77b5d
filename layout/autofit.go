package layout

// AutoFit walks font sizes down from maxSize by step and returns the first
// result that fits width x height. minSize is always tried. When nothing
// fits, the result for the last size tried is returned with Fits false; the
// caller draws it anyway.
//
// Sizes are tried linearly rather than bisected because measured widths are
// not strictly monotonic across integer sizes once hinting is involved.
func AutoFit(f *Fitter, text string, width, height, maxSize, minSize, step int) FitResult {
	return stepDown(maxSize, minSize, step, func(size int) FitResult {
		return f.Fit(text, size, width, height)
	})
}

// AutoFitLine is AutoFit for text that must stay on one line: only the font
// size changes, the text is never wrapped.
func AutoFitLine(f *Fitter, text string, width, height, maxSize, minSize, step int) FitResult {
	return stepDown(maxSize, minSize, step, func(size int) FitResult {
		return f.FitLine(text, size, width, height)
	})
}

func stepDown(maxSize, minSize, step int, fit func(size int) FitResult) FitResult {
	if step <= 0 {
		step = 1
	}
	if minSize < 1 {
		minSize = 1
	}
	if maxSize < minSize {
		maxSize = minSize
	}

	var res FitResult
	for size := maxSize; ; size -= step {
		if size < minSize {
			size = minSize
		}
		res = fit(size)
		if res.Fits || size == minSize {
			return res
		}
	}
}
