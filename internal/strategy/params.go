package strategy

// IntParam reads an integer parameter, tolerating the numeric types viper
// produces when unmarshaling YAML.
func IntParam(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// FloatParam reads a float parameter, tolerating the numeric types viper
// produces when unmarshaling YAML.
func FloatParam(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}
