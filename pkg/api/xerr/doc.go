// Package xerr 定义 API 错误分类。
//
// 所有可预期的失败都以 [*Info] 表达：状态码、面向客户端的消息、
// 可选的字段级错误列表，以及构造时捕获的调用栈。
// 处理器和服务层只负责返回错误，不记录日志、不写响应，
// 统一由终端处理器（xhttp.Terminal）转换为响应并写入请求上下文。
//
// 预置错误：
//
//	NotFound("User")          400 "User not found"
//	AlreadyExists("User")     400 "User already exists"
//	InvalidCredentials()      401 "Invalid credentials"
//	MissingAuthToken()        401 "Missing authorization token"
//	InvalidToken()            401 "Invalid or expired token"
//	APIPathNotFound()         404 "API path not found"
//	StructuredValidation(es)  400 "Validation failed" + errors
//	Internal(cause)           500 "Internal Server Error"
//
// 任意 error 可经 [From] 归一化：错误链中的 *Info 原样返回，其余映射为 500。
package xerr
