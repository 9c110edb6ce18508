package xnet

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// ParseRange 从字符串解析 IP 范围。支持 4 种格式：
//   - 单 IP: "10.0.0.1"
//   - CIDR: "10.0.0.0/8"
//   - 掩码: "10.0.0.0/255.0.0.0"（仅 IPv4）
//   - 范围: "10.0.0.1-10.0.0.9"
//
// 首尾空白会被忽略。带 zone 的 IPv6 地址（fe80::1%eth0）被拒绝，
// netipx 会丢弃 zone，匹配结果不可靠。
func ParseRange(s string) (netipx.IPRange, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "%") {
		return netipx.IPRange{}, fmt.Errorf("%w: zone not supported: %s", ErrInvalidRange, s)
	}

	if from, to, ok := strings.Cut(s, "-"); ok {
		start, err := netip.ParseAddr(strings.TrimSpace(from))
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("%w: invalid range start: %w", ErrInvalidRange, err)
		}
		end, err := netip.ParseAddr(strings.TrimSpace(to))
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("%w: invalid range end: %w", ErrInvalidRange, err)
		}
		r := netipx.IPRangeFrom(start, end)
		if !r.IsValid() {
			return netipx.IPRange{}, fmt.Errorf("%w: %s", ErrInvalidRange, s)
		}
		return r, nil
	}

	if addrPart, maskPart, ok := strings.Cut(s, "/"); ok {
		addrPart, maskPart = strings.TrimSpace(addrPart), strings.TrimSpace(maskPart)
		if strings.Contains(maskPart, ".") {
			return rangeFromMask(addrPart, maskPart)
		}
		prefix, err := netip.ParsePrefix(addrPart + "/" + maskPart)
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("%w: invalid CIDR: %w", ErrInvalidRange, err)
		}
		return netipx.RangeOfPrefix(prefix.Masked()), nil
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return netipx.IPRangeFrom(addr, addr), nil
}

// rangeFromMask 解析点分掩码形式，要求掩码连续。
func rangeFromMask(addrStr, maskStr string) (netipx.IPRange, error) {
	addr, err := netip.ParseAddr(addrStr)
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("%w: invalid address: %w", ErrInvalidRange, err)
	}
	mask, err := netip.ParseAddr(maskStr)
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("%w: invalid mask: %w", ErrInvalidRange, err)
	}
	addr, mask = addr.Unmap(), mask.Unmap()
	if !addr.Is4() || !mask.Is4() {
		return netipx.IPRange{}, fmt.Errorf("%w: mask notation only supports IPv4", ErrInvalidRange)
	}

	a, m := addr.As4(), mask.As4()
	bits := binary.BigEndian.Uint32(m[:])
	if inv := ^bits; inv&(inv+1) != 0 {
		return netipx.IPRange{}, fmt.Errorf("%w: non-contiguous mask: %s", ErrInvalidRange, maskStr)
	}
	start := binary.BigEndian.Uint32(a[:]) & bits
	end := start | ^bits
	return netipx.IPRangeFrom(addrFromUint32(start), addrFromUint32(end)), nil
}

func addrFromUint32(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}

// ParseRanges 解析多个范围并合并为 [*netipx.IPSet]。空输入返回空集合。
func ParseRanges(specs []string) (*netipx.IPSet, error) {
	var b netipx.IPSetBuilder
	for _, s := range specs {
		r, err := ParseRange(s)
		if err != nil {
			return nil, fmt.Errorf("parse range %q: %w", s, err)
		}
		b.AddRange(r)
	}
	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("build IPSet: %w", err)
	}
	return set, nil
}
