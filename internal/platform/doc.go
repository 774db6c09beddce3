// Package platform hides the operating system differences the mirror
// locations run into: permission bits, child process attributes for git
// invocations, and whether the process may touch machine-scope settings.
package platform
