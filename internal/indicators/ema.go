package indicators

// EMA 计算指数移动平均序列，输出与输入等长
// 首值作为种子，平滑系数 α = 2/(span+1)
func EMA(values []float64, span int) []float64 {
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result
	}

	alpha := 2.0 / float64(span+1)
	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = alpha*values[i] + (1-alpha)*result[i-1]
	}

	return result
}

// rollingMean 计算滚动均值序列，序列起始处窗口收缩而不是置为未定义
func rollingMean(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
			result[i] = sum / float64(window)
		} else {
			result[i] = sum / float64(i+1)
		}
	}
	return result
}

// rollingMin 计算滚动窗口最小值序列
func rollingMin(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		min := values[start]
		for j := start + 1; j <= i; j++ {
			if values[j] < min {
				min = values[j]
			}
		}
		result[i] = min
	}
	return result
}

// rollingMax 计算滚动窗口最大值序列
func rollingMax(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		max := values[start]
		for j := start + 1; j <= i; j++ {
			if values[j] > max {
				max = values[j]
			}
		}
		result[i] = max
	}
	return result
}
