// Package xresponse 统一的 JSON 响应外层结构。
//
// 成功：
//
//	{"success":true,"message":"Success","data":{...}}
//
// 失败：
//
//	{"success":false,"message":"Validation failed","requestId":"...","errors":[...],"errorStack":"..."}
//
// requestId 来自 xctx 绑定的请求上下文；errorStack 仅在 [WithDebug] 开启时出现。
package xresponse
