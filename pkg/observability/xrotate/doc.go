// Package xrotate 提供日志文件轮转。
//
// [NewLumberjack] 基于 lumberjack v2 按文件大小轮转，并按数量与天数清理备份。
// xlog 的文件 sink（logs/error.log、logs/combined.log）通过它写入。
package xrotate
