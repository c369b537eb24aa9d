//go:build !hashtable_debug

package hashtable

const debugChecks = false
