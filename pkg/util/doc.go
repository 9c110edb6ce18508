// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xid: 基于 sonyflake 的十进制字符串 ID 生成
//   - xjson: JSON 输出工具
//   - xnet: IP 范围解析与受信任代理的客户端地址识别，基于 net/netip + go4.org/netipx
package util
