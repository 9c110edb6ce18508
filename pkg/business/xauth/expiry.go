package xauth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseExpiry 解析 Token 有效期。
//
// 支持 "7d"、"12h"、"30m"、"45s" 以及 time.ParseDuration 接受的其它格式；
// 纯数字按秒计。结果必须为正。
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidExpiry)
	}

	var d time.Duration
	switch {
	case isDigits(s):
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidExpiry, s, err)
		}
		d = time.Duration(n) * time.Second
	case strings.HasSuffix(s, "d") && isDigits(s[:len(s)-1]):
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidExpiry, s, err)
		}
		d = time.Duration(n) * 24 * time.Hour
	default:
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidExpiry, s, err)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: %q is not positive", ErrInvalidExpiry, s)
	}
	return d, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
