package xhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/api/xvalidate"
)

// MsgInvalidJSON 请求体不是合法 JSON 时的消息。
const MsgInvalidJSON = "Invalid JSON body"

// DecodeJSON 读取请求体，按 schema 校验后解码到 dst。
//
// 空请求体视为空对象，由 schema 给出缺失字段错误。
// 无法解析的请求体返回 400 "Invalid JSON body"；校验失败返回 *xerr.Info（Validation 形态）。
// schema 为 nil 时跳过校验，dst 为 nil 时跳过解码。
func DecodeJSON(r *http.Request, schema *xvalidate.Schema, dst any) error {
	var data []byte
	if r.Body != nil {
		var err error
		data, err = io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return xerr.Simple(http.StatusRequestEntityTooLarge, "Request body too large").WithCause(err)
			}
			return xerr.Simple(http.StatusBadRequest, MsgInvalidJSON).WithCause(err)
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var input any
	if err := dec.Decode(&input); err != nil {
		return xerr.Simple(http.StatusBadRequest, MsgInvalidJSON).WithCause(err)
	}
	if dec.More() {
		return xerr.Simple(http.StatusBadRequest, MsgInvalidJSON)
	}

	if schema != nil {
		if errs := xvalidate.ValidateValue(schema, input); len(errs) > 0 {
			return xerr.StructuredValidation(errs)
		}
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return xerr.Simple(http.StatusBadRequest, MsgInvalidJSON).WithCause(err)
	}
	return nil
}
