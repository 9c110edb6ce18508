// Package api 提供 JSON HTTP API 请求管线相关的子包。
//
// 子包列表：
//   - xerr: 错误分类（Simple / Validation）与统一构造函数
//   - xvalidate: 声明式 Schema 校验引擎，收集全部字段级错误
//   - xresponse: 统一响应信封（success / error / validation）
//   - xhttp: 终端错误处理、访问日志、panic 恢复、请求体解码
//
// 设计原则：
//   - 错误在抛出处只构造不记录，统一向上传播到终端处理器
//   - 终端处理器是唯一把错误转换成线上格式的地方
//   - 响应状态码总是来自错误值或成功调用方，不做推断
package api
