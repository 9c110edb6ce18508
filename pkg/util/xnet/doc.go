// Package xnet 提供 IP 范围解析与客户端地址识别。
//
// 基于标准库 [net/netip] 和社区库 [go4.org/netipx]：
//   - parse.go: 解析单 IP / CIDR / 掩码 / 范围为 [netipx.IPRange]，批量合并为 [*netipx.IPSet]
//   - proxy.go: [ProxySet] 受信任代理集合，按转发链解析真实客户端地址
//
//	proxies, _ := xnet.NewProxySet([]string{"10.0.0.0/8", "127.0.0.1"})
//	ip := proxies.ClientIP(r) // 对端为 10.x 时读取 X-Forwarded-For
package xnet
