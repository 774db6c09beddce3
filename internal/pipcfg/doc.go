// Package pipcfg reads and clears the index URL in pip configuration files.
//
// Only the index-url key and the legacy mirror key are touched; any other
// setting in the file (timeout, trusted-host, ...) survives a clear.
package pipcfg
