// Package storageopt 存储层的共用选项：分页参数、查询耗时钩子、健康检查超时。
//
// 分页参数从查询串宽松解析，非法值回退到默认值再截断到合法范围：
//
//	p := storageopt.ParsePagination(r.URL.Query())
//	users, total, err := store.List(ctx, p.Offset(), p.Limit)
//	page := xresponse.NewPage(users, p.Pagination(total))
//
// 查询钩子通过 Measure 报告每次查询，QueryLogger 记录 debug 日志并标记慢查询。
package storageopt
