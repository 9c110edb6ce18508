package xresponse

import (
	"bytes"
	"encoding/json"

	"github.com/omeyang/xapikit/pkg/api/xerr"
)

// Envelope 所有 JSON 响应共用的外层结构。
//
// 成功响应输出 success、message、data，data 键始终存在；
// 失败响应输出 success、message，以及按需出现的 requestId、errors、errorStack。
type Envelope struct {
	Success    bool
	Message    string
	Data       any
	RequestID  string
	Errors     []xerr.ValidationError
	ErrorStack string
}

// MarshalJSON 按固定键顺序输出，成功与失败两种形态互不混用。
func (e Envelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"success":`)
	if e.Success {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
	if err := writeField(&buf, "message", e.Message); err != nil {
		return nil, err
	}

	if e.Success {
		if err := writeField(&buf, "data", e.Data); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	if e.RequestID != "" {
		if err := writeField(&buf, "requestId", e.RequestID); err != nil {
			return nil, err
		}
	}
	if e.Errors != nil {
		if err := writeField(&buf, "errors", e.Errors); err != nil {
			return nil, err
		}
	}
	if e.ErrorStack != "" {
		if err := writeField(&buf, "errorStack", e.ErrorStack); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.WriteString(`,"`)
	buf.WriteString(key)
	buf.WriteString(`":`)
	buf.Write(data)
	return nil
}

// Pagination 分页元数据。
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination 根据页码、每页条数与总数计算分页元数据。limit <= 0 时总页数为 0。
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Page 分页列表的 data 载荷。Data 为 nil 时输出空数组。
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage 创建分页载荷。
func NewPage[T any](items []T, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Pagination: p}
}
