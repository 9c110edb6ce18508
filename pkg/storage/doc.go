// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xcache: 基于 ristretto 的进程内泛型缓存，Cache-Aside 加载
package storage
