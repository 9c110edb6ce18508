package xjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMarshal 序列化失败。
var ErrMarshal = errors.New("xjson: marshal failed")

const indent = "  "

// PrettyE 将 v 序列化为两空格缩进的 JSON，不转义 HTML 字符。
func PrettyE(v any) (string, error) {
	var buf bytes.Buffer
	if err := encodePretty(&buf, v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Pretty 同 PrettyE，失败时返回 "<marshal error: ...>"。用于日志和调试输出。
func Pretty(v any) string {
	s, err := PrettyE(v)
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return s
}

// Write 将 v 以格式化 JSON 写入 w，末尾带换行。用于 CLI 输出。
func Write(w io.Writer, v any) error {
	var buf bytes.Buffer
	if err := encodePretty(&buf, v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func encodePretty(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return nil
}
