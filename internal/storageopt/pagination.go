package storageopt

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/omeyang/xapikit/pkg/api/xresponse"
)

// 分页参数的默认值与上限。
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params 分页参数，Page 从 1 开始。
type Params struct {
	Page  int
	Limit int
}

// ParsePagination 从查询串解析分页参数。
//
// 取值宽松：解析取前导整数，缺失、非数字或 0 时使用默认值，
// 随后 page 下限为 1，limit 限制在 [1, MaxLimit]。从不返回错误。
func ParsePagination(q url.Values) Params {
	page := leadingInt(q.Get("page"))
	if page == 0 {
		page = DefaultPage
	}
	limit := leadingInt(q.Get("limit"))
	if limit == 0 {
		limit = DefaultLimit
	}
	return Params{
		Page:  max(1, page),
		Limit: min(MaxLimit, max(1, limit)),
	}
}

// Offset 返回跳过的记录数 (Page-1)*Limit，溢出时饱和为 math.MaxInt。
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Pagination 根据总数构造响应中的分页信息。
func (p Params) Pagination(total int) xresponse.Pagination {
	return xresponse.NewPagination(p.Page, p.Limit, total)
}

// leadingInt 解析 s 开头的十进制整数（可带符号），无数字时返回 0。
// "12abc" 解析为 12，溢出时饱和。
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	return n
}
