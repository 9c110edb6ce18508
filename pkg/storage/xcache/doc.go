// Package xcache 提供基于 ristretto 的进程内泛型缓存。
//
// Memory 在 ristretto 之上补充两项能力：
//   - 统一 TTL：Set 写入的条目按构造时的 TTL 过期
//   - Load：Cache-Aside 读取，未命中时通过 singleflight 合并并发回源
//
// ristretto 异步写入，Set 之后立即 Get 可能未命中；需要立即可见时调用 Wait。
//
// 每个条目的 cost 固定为 1，WithMaxEntries 即条目上限。
//
// # Load 的 context 处理
//
// 回源函数使用脱离调用方取消信号的 context，并附加 WithLoadTimeout 指定的超时。
// 首个调用方取消不会中断其他等待同一 key 的调用方。
package xcache
