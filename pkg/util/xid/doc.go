// Package xid 基于 sonyflake 的分布式 ID 生成，ID 以十进制字符串表示。
//
// 用于用户 ID 等需要按生成时间单调递增的标识：
//
//	gen, err := xid.NewGenerator()
//	id, err := gen.Next(ctx) // "583920391029817345"
//
// 机器 ID 默认来自 XAPI_MACHINE_ID，未设置时取主机名哈希。
package xid
