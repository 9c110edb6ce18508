// Package xjson JSON 格式化输出。
//
//   - [PrettyE]: 两空格缩进，失败返回 [ErrMarshal] 包装的错误。
//   - [Pretty]: 失败时返回 "<marshal error: ...>" 标记字符串，用于日志。
//   - [Write]: 写入 io.Writer 并追加换行，xapid 的 config 子命令使用。
//
// 与 [encoding/json] 默认行为不同，HTML 字符（<, >, &）不转义，便于终端阅读。
package xjson
