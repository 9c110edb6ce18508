// Package xvalidate 提供声明式的请求体校验。
//
// Schema 是纯数据：必填字段、属性约束、是否拒绝未声明字段。
// 校验以"收集全部"模式运行，一个字段可以产生多个错误，
// 每个错误携带固定的 [xerr.Code]，便于客户端定位与本地化。
//
//	var registerSchema = xvalidate.Object().
//	    Require("email", "password").
//	    Prop("email", xvalidate.String().Email().MinLen(3).MaxLen(50)).
//	    Prop("password", xvalidate.String().MinLen(6).MaxLen(100)).
//	    Strict().
//	    MustBuild()
//
//	if err := xvalidate.Check(registerSchema, body); err != nil {
//	    return err // *xerr.Info，KindValidation
//	}
//
// 空请求体遇到必填字段时只报告 REQUIRED，避免一条"缺少请求体"掩盖具体字段。
// format 为 email 时违规码为 INVALID_EMAIL，其余 format 为 INVALID_FORMAT。
package xvalidate
