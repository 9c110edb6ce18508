package xid

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// EnvMachineID 显式指定机器 ID 的环境变量，取值 0-65535。
const EnvMachineID = "XAPI_MACHINE_ID"

var osHostname = os.Hostname

// DefaultMachineID 依次尝试 XAPI_MACHINE_ID 与主机名哈希。
//
// 同一主机名的多个进程会得到相同的机器 ID，多实例部署请显式设置环境变量。
func DefaultMachineID() (uint16, error) {
	if s := os.Getenv(EnvMachineID); s != "" {
		id, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("xid: invalid %s value %q: %w", EnvMachineID, s, err)
		}
		return uint16(id), nil
	}

	hostname, err := osHostname()
	if err != nil {
		return 0, fmt.Errorf("xid: resolve hostname: %w", err)
	}
	if hostname == "" {
		return 0, errors.New("xid: empty hostname")
	}
	return hashToMachineID(hostname), nil
}

// hashToMachineID xxhash64 按 16 位分段异或折叠。
func hashToMachineID(s string) uint16 {
	sum := xxhash.Sum64String(s)
	return uint16(sum>>48) ^ uint16(sum>>32) ^ uint16(sum>>16) ^ uint16(sum)
}
