package xnet

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// 代理头。
const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
)

// ProxySet 受信任的反向代理地址集合。
//
// 只有直连对端属于集合时才读取转发头，否则转发头可被客户端伪造。
// nil 或空集合表示不信任任何代理，始终使用直连地址。
type ProxySet struct {
	set *netipx.IPSet
}

// NewProxySet 从地址规格（单 IP、CIDR、掩码、范围）构建代理集合。
func NewProxySet(specs []string) (*ProxySet, error) {
	set, err := ParseRanges(specs)
	if err != nil {
		return nil, err
	}
	return &ProxySet{set: set}, nil
}

// Trusted 判断地址是否属于受信任代理。
func (p *ProxySet) Trusted(addr netip.Addr) bool {
	if p == nil || p.set == nil || !addr.IsValid() {
		return false
	}
	return p.set.Contains(addr.Unmap())
}

// ClientIP 解析请求的客户端地址。
//
// 直连对端不受信任时直接返回对端地址。否则自右向左遍历 X-Forwarded-For，
// 返回第一个不受信任的地址；转发链全部受信任时返回最左侧地址。
// 没有 X-Forwarded-For 时依次尝试 X-Real-IP 与对端地址。
func (p *ProxySet) ClientIP(r *http.Request) string {
	peer := remoteAddr(r.RemoteAddr)
	if !p.Trusted(peer) {
		return addrString(peer, r.RemoteAddr)
	}

	if hops := forwardedHops(r.Header.Values(HeaderForwardedFor)); len(hops) > 0 {
		for i := len(hops) - 1; i >= 0; i-- {
			if !p.Trusted(hops[i]) {
				return hops[i].String()
			}
		}
		return hops[0].String()
	}

	if ip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get(HeaderRealIP))); err == nil {
		return ip.Unmap().String()
	}
	return addrString(peer, r.RemoteAddr)
}

func forwardedHops(values []string) []netip.Addr {
	var hops []netip.Addr
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			addr, err := netip.ParseAddr(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			hops = append(hops, addr.Unmap())
		}
	}
	return hops
}

func remoteAddr(s string) netip.Addr {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap()
	}
	host, _, err := net.SplitHostPort(s)
	if err != nil {
		host = s
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

func addrString(addr netip.Addr, raw string) string {
	if addr.IsValid() {
		return addr.String()
	}
	return raw
}
