// Package security 提供与敏感数据处理相关的子包。
//
// 子包列表：
//   - xredact: 敏感字段脱敏，基于封闭的 JSON-like 值类型递归处理
//
// 设计原则：
//   - 脱敏在数据离开进程（日志、调试输出）之前完成
//   - 拒绝名单在进程启动后不可变，无需加锁
package security
