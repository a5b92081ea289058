//go:build omnicall_debug

package plugin

// Debug builds load libraries carrying the d suffix, keeping debug and
// release adapter builds side by side in one directory.
const debugSuffix = "d"
