//go:build !omnicall_debug

package plugin

const debugSuffix = ""
