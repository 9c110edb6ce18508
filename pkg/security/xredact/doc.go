// Package xredact 提供敏感数据脱敏。
//
// # 值模型
//
// [Value] 是封闭的 JSON-like 类型：Null、Scalar、Sequence、Mapping。
// 脱敏只在这四种变体上递归，不依赖运行时反射。
// 来自 HTTP 请求的 Go 值（map[string]any、url.Values、http.Header 等）
// 通过 [FromAny] 转换；无法识别的类型作为不透明标量原样保留。
//
// # 规则
//
// 映射的键（忽略大小写）只要包含拒绝名单中任一子串，值就被替换为 [Marker]。
// 默认名单见 [DefaultDenyList]：password、token、authorization、jwt、secret、key。
//
// 性质：
//   - 幂等：Redact(Redact(v)) 与 Redact(v) 相等
//   - 保结构：键集合、键顺序、序列长度不变，只有命中键的值被替换
//   - 不处理循环引用：输入总是无环的请求/响应数据
//
// # 使用
//
//	body := xredact.RedactAny(map[string]any{
//	    "email":    "a@b.c",
//	    "password": "secret1",
//	})
//	// {"email":"a@b.c","password":"[REDACTED]"}
package xredact
