package utils

import "time"

func EmptyFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// PositiveOr returns d when it is positive and fallback otherwise.
func PositiveOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// JoinURL appends path to base without doubling or dropping the slash between them.
func JoinURL(base, path string) string {
	if path == "" {
		return base
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return base + path
}
