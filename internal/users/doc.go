// Package users 用户注册、登录与查询，以及内存和 Redis 两种存储实现。
//
// Service 返回 *xerr.Info 表达业务失败（AlreadyExists、InvalidCredentials、NotFound），
// 存储层错误原样返回，由终端错误处理器转换为 500。
package users
